package main

import (
	"github.com/paraflightlog/wingadmin"
	"github.com/spf13/cobra"
)

var manufacturerCmd = &cobra.Command{
	Use:     "manufacturer",
	Aliases: []string{"mfr"},
	Short:   "Manage manufacturers in the catalog",
}

var manufacturerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all manufacturers with wing counts",
	RunE:  runManufacturerList,
}

var manufacturerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a manufacturer",
	Long: `Add a manufacturer. Its ID is derived from the name unless --id
is given.

Example:
  wingadmin manufacturer add "Ozone"
  wingadmin manufacturer add "Gin Gliders" --id gin`,
	Args: cobra.ExactArgs(1),
	RunE: runManufacturerAdd,
}

var manufacturerEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a manufacturer",
	Long: `Edit the manufacturer with the given ID. Renaming updates the full
display name of every wing that references it; changing the ID with
--new-id additionally rewrites those wings' manufacturer references.

Example:
  wingadmin manufacturer edit ozone --name "Ozone Gliders"
  wingadmin manufacturer edit niviuk --new-id niviuk-gliders`,
	Args: cobra.ExactArgs(1),
	RunE: runManufacturerEdit,
}

var manufacturerRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a manufacturer",
	Long: `Delete the manufacturer with the given ID. The delete is rejected
while any wing still references it.

Example:
  wingadmin manufacturer rm ozone`,
	Args: cobra.ExactArgs(1),
	RunE: runManufacturerRm,
}

var (
	manufacturerID    string
	manufacturerName  string
	manufacturerNewID string
)

func init() {
	manufacturerAddCmd.Flags().StringVar(&manufacturerID, "id", "", "Explicit manufacturer ID (default: derived from name)")
	manufacturerEditCmd.Flags().StringVar(&manufacturerName, "name", "", "New display name")
	manufacturerEditCmd.Flags().StringVar(&manufacturerNewID, "new-id", "", "New manufacturer ID (cascades onto referencing wings)")

	manufacturerCmd.AddCommand(manufacturerListCmd)
	manufacturerCmd.AddCommand(manufacturerAddCmd)
	manufacturerCmd.AddCommand(manufacturerEditCmd)
	manufacturerCmd.AddCommand(manufacturerRmCmd)
}

func runManufacturerList(cmd *cobra.Command, args []string) error {
	client, err := buildClient(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	catalog, err := client.Catalog(cmd.Context())
	if err != nil {
		return friendlyError(err)
	}
	return outputManufacturerList(cmd, catalog)
}

func runManufacturerAdd(cmd *cobra.Command, args []string) error {
	client, err := buildClient(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	params := wingadmin.ManufacturerParams{
		ID:   manufacturerID,
		Name: args[0],
	}

	var m *wingadmin.Manufacturer
	err = runWithSpinner(cmd.ErrOrStderr(), "Saving manufacturer", func() error {
		var saveErr error
		m, saveErr = client.SaveManufacturer(cmd.Context(), params)
		return saveErr
	})
	if err != nil {
		return friendlyError(err)
	}

	if !outputJSON {
		printSuccess(cmd.OutOrStdout(), "Added %s", m.Name)
	}
	return outputManufacturer(cmd, m)
}

func runManufacturerEdit(cmd *cobra.Command, args []string) error {
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
	current := catalog.ManufacturerByID(args[0])
	if current == nil {
		return friendlyError(wingadmin.ErrManufacturerNotFound)
	}

	params := wingadmin.ManufacturerParams{
		PreviousID: current.ID,
		ID:         current.ID,
		Name:       current.Name,
	}
	if cmd.Flags().Changed("name") {
		params.Name = manufacturerName
	}
	if cmd.Flags().Changed("new-id") {
		params.ID = manufacturerNewID
	}

	var m *wingadmin.Manufacturer
	err = runWithSpinner(cmd.ErrOrStderr(), "Saving manufacturer", func() error {
		var saveErr error
		m, saveErr = client.SaveManufacturer(ctx, params)
		return saveErr
	})
	if err != nil {
		return friendlyError(err)
	}

	if !outputJSON {
		printSuccess(cmd.OutOrStdout(), "Updated %s", m.Name)
	}
	return outputManufacturer(cmd, m)
}

func runManufacturerRm(cmd *cobra.Command, args []string) error {
	client, err := buildClient(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	err = runWithSpinner(cmd.ErrOrStderr(), "Deleting manufacturer", func() error {
		return client.DeleteManufacturer(cmd.Context(), args[0])
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
