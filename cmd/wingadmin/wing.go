package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/paraflightlog/wingadmin"
	"github.com/spf13/cobra"
)

var wingCmd = &cobra.Command{
	Use:   "wing",
	Short: "Manage wings in the catalog",
}

var wingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wings in display order",
	Long: `List every wing in the catalog, in the order they appear in the
published document.

Example:
  wingadmin wing list
  wingadmin wing list --json`,
	RunE: runWingList,
}

var wingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a wing to the catalog",
	Long: `Add a wing. The wing ID is derived from the manufacturer ID and
the model name; the full display name is derived from the manufacturer's
name.

Example:
  wingadmin wing add --manufacturer ozone --model "Rush 6" --type EN-B --sizes 23,25,27 --year 2022`,
	RunE: runWingAdd,
}

var wingEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an existing wing",
	Long: `Edit the wing with the given ID. Only the provided flags change;
unset fields keep their current values. The ID itself never changes.

Example:
  wingadmin wing edit ozone-rush-6 --type EN-B --year 2023`,
	Args: cobra.ExactArgs(1),
	RunE: runWingEdit,
}

var wingRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a wing from the catalog",
	Long: `Delete the wing with the given ID. Its image blob, if any, is
removed afterwards on a best-effort basis.

Example:
  wingadmin wing rm ozone-rush-6`,
	Args: cobra.ExactArgs(1),
	RunE: runWingRm,
}

var (
	wingManufacturer string
	wingModel        string
	wingType         string
	wingSizes        string
	wingYear         int
	wingImagePath    string
	wingRefresh      bool
)

func init() {
	wingListCmd.Flags().BoolVar(&wingRefresh, "refresh", false, "Reload the catalog before listing")

	for _, cmd := range []*cobra.Command{wingAddCmd, wingEditCmd} {
		cmd.Flags().StringVar(&wingManufacturer, "manufacturer", "", "Manufacturer ID")
		cmd.Flags().StringVar(&wingModel, "model", "", "Model name")
		cmd.Flags().StringVar(&wingType, "type", "", "Certification category (EN-A, EN-B, EN-C, EN-D, CCC)")
		cmd.Flags().StringVar(&wingSizes, "sizes", "", "Comma-separated size labels, e.g. 23,25,27")
		cmd.Flags().IntVar(&wingYear, "year", 0, "Release year")
		cmd.Flags().StringVar(&wingImagePath, "image", "", "Path to a PNG image for the wing")
	}

	wingCmd.AddCommand(wingListCmd)
	wingCmd.AddCommand(wingAddCmd)
	wingCmd.AddCommand(wingEditCmd)
	wingCmd.AddCommand(wingRmCmd)
}

func runWingList(cmd *cobra.Command, args []string) error {
	client, err := buildClient(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := cmd.Context()
	var catalog *wingadmin.Catalog
	if wingRefresh {
		catalog, err = client.Refresh(ctx)
	} else {
		catalog, err = client.Catalog(ctx)
	}
	if err != nil {
		return friendlyError(err)
	}
	return outputWingList(cmd, catalog.Wings)
}

func runWingAdd(cmd *cobra.Command, args []string) error {
	params := wingadmin.WingParams{
		Manufacturer: wingManufacturer,
		Model:        wingModel,
		Type:         wingadmin.WingType(wingType),
		Sizes:        splitSizes(wingSizes),
	}
	if wingYear != 0 {
		year := wingYear
		params.Year = &year
	}
	if wingImagePath != "" {
		image, err := os.ReadFile(wingImagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		params.Image = image
	}

	client, err := buildClient(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	var wing *wingadmin.Wing
	err = runWithSpinner(cmd.ErrOrStderr(), "Saving wing", func() error {
		var saveErr error
		wing, saveErr = client.SaveWing(cmd.Context(), params)
		return saveErr
	})
	if err != nil {
		return friendlyError(err)
	}

	if !outputJSON {
		printSuccess(cmd.OutOrStdout(), "Added %s", wing.FullName)
	}
	return outputWing(cmd, wing)
}

func runWingEdit(cmd *cobra.Command, args []string) error {
	client, err := buildClient(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := cmd.Context()
	catalog, err := client.Catalog(ctx)
	if err != nil {
		return friendlyError(err)
	}
	current := catalog.WingByID(args[0])
	if current == nil {
		return fmt.Errorf("wing %q: %w", args[0], wingadmin.ErrWingNotFound)
	}

	// Unset flags keep the wing's current values.
	params := wingadmin.WingParams{
		ID:           current.ID,
		Manufacturer: current.Manufacturer,
		Model:        current.Model,
		Type:         current.Type,
		Sizes:        current.Sizes,
		Year:         current.Year,
	}
	if cmd.Flags().Changed("manufacturer") {
		params.Manufacturer = wingManufacturer
	}
	if cmd.Flags().Changed("model") {
		params.Model = wingModel
	}
	if cmd.Flags().Changed("type") {
		params.Type = wingadmin.WingType(wingType)
	}
	if cmd.Flags().Changed("sizes") {
		params.Sizes = splitSizes(wingSizes)
	}
	if cmd.Flags().Changed("year") {
		year := wingYear
		params.Year = &year
	}
	if wingImagePath != "" {
		image, err := os.ReadFile(wingImagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		params.Image = image
	}

	var wing *wingadmin.Wing
	err = runWithSpinner(cmd.ErrOrStderr(), "Saving wing", func() error {
		var saveErr error
		wing, saveErr = client.SaveWing(ctx, params)
		return saveErr
	})
	if err != nil {
		return friendlyError(err)
	}

	if !outputJSON {
		printSuccess(cmd.OutOrStdout(), "Updated %s", wing.FullName)
	}
	return outputWing(cmd, wing)
}

func runWingRm(cmd *cobra.Command, args []string) error {
	client, err := buildClient(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	err = runWithSpinner(cmd.ErrOrStderr(), "Deleting wing", func() error {
		return client.DeleteWing(cmd.Context(), args[0])
	})
	if err != nil {
		return friendlyError(err)
	}

	if outputJSON {
		return outputAsJSON(cmd, map[string]string{"deleted": args[0]})
	}
	printSuccess(cmd.OutOrStdout(), "Deleted %s", args[0])
	return nil
}

// splitSizes parses a comma-separated size list, dropping empty entries.
func splitSizes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	sizes := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sizes = append(sizes, s)
		}
	}
	return sizes
}
