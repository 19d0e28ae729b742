package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/paraflightlog/wingadmin"
	"github.com/spf13/cobra"
)

// outputAsJSON writes any value as formatted JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v interface{}) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError prints an error to stderr, ensuring no tokens are leaked.
func outputError(w io.Writer, err error) {
	msg := scrubSensitiveData(err.Error())
	fmt.Fprintf(w, "Error: %s\n", msg)
}

// scrubSensitiveData removes potential tokens from error messages.
// The library already avoids including credentials, but this is defense
// in depth.
func scrubSensitiveData(msg string) string {
	for _, secret := range []string{cfgToken, os.Getenv("GITHUB_TOKEN")} {
		if secret != "" && strings.Contains(msg, secret) {
			msg = strings.ReplaceAll(msg, secret, "[REDACTED]")
		}
	}
	return msg
}

// outputWing prints a single wing in the configured format.
func outputWing(cmd *cobra.Command, wing *wingadmin.Wing) error {
	if outputJSON {
		return outputAsJSON(cmd, wing)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:           %s\n", wing.ID)
	fmt.Fprintf(out, "Full name:    %s\n", wing.FullName)
	fmt.Fprintf(out, "Manufacturer: %s\n", wing.Manufacturer)
	fmt.Fprintf(out, "Model:        %s\n", wing.Model)
	fmt.Fprintf(out, "Type:         %s\n", wing.Type)
	if len(wing.Sizes) > 0 {
		fmt.Fprintf(out, "Sizes:        %s\n", strings.Join(wing.Sizes, ", "))
	}
	if wing.Year != nil {
		fmt.Fprintf(out, "Year:         %d\n", *wing.Year)
	}
	if wing.ImageURL != nil {
		fmt.Fprintf(out, "Image:        %s\n", *wing.ImageURL)
	}
	return nil
}

// outputWingList prints the catalog's wings in display order.
func outputWingList(cmd *cobra.Command, wings []wingadmin.Wing) error {
	if outputJSON {
		return outputAsJSON(cmd, wings)
	}

	out := cmd.OutOrStdout()
	if len(wings) == 0 {
		fmt.Fprintln(out, "The catalog has no wings.")
		return nil
	}

	fmt.Fprintf(out, "%d wings:\n\n", len(wings))
	for _, wing := range wings {
		year := ""
		if wing.Year != nil {
			year = fmt.Sprintf(" (%d)", *wing.Year)
		}
		fmt.Fprintf(out, "  %-28s %-6s %s%s\n", wing.ID, wing.Type, wing.FullName, year)
	}
	return nil
}

// outputManufacturer prints a single manufacturer in the configured format.
func outputManufacturer(cmd *cobra.Command, m *wingadmin.Manufacturer) error {
	if outputJSON {
		return outputAsJSON(cmd, m)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:   %s\n", m.ID)
	fmt.Fprintf(out, "Name: %s\n", m.Name)
	return nil
}

// manufacturerRow is a manufacturer plus its wing count, for listings.
type manufacturerRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	WingCount int    `json:"wing_count"`
}

// outputManufacturerList prints all manufacturers with wing counts.
func outputManufacturerList(cmd *cobra.Command, catalog *wingadmin.Catalog) error {
	rows := make([]manufacturerRow, 0, len(catalog.Manufacturers))
	for _, m := range catalog.Manufacturers {
		rows = append(rows, manufacturerRow{
			ID:        m.ID,
			Name:      m.Name,
			WingCount: catalog.WingCountFor(m.ID),
		})
	}

	if outputJSON {
		return outputAsJSON(cmd, rows)
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "The catalog has no manufacturers.")
		return nil
	}

	fmt.Fprintf(out, "%d manufacturers:\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(out, "  %-20s %-24s %d wing(s)\n", row.ID, row.Name, row.WingCount)
	}
	return nil
}

// outputStats prints catalog statistics.
func outputStats(cmd *cobra.Command, stats wingadmin.CatalogStats) error {
	if outputJSON {
		return outputAsJSON(cmd, stats)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Catalog Statistics")
	fmt.Fprintln(out, "------------------")
	fmt.Fprintf(out, "Wings:         %d\n", stats.WingCount)
	fmt.Fprintf(out, "Manufacturers: %d\n", stats.ManufacturerCount)

	if !stats.LastUpdated.IsZero() {
		fmt.Fprintf(out, "Last updated:  %s (%s ago)\n",
			stats.LastUpdated.Format(time.RFC3339),
			time.Since(stats.LastUpdated).Round(time.Minute))
	} else {
		fmt.Fprintln(out, "Last updated:  never")
	}
	return nil
}
