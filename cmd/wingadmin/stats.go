package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long: `Display wing and manufacturer counts and the last update time.

Example:
  wingadmin stats
  wingadmin stats --refresh`,
	RunE: runStats,
}

var statsRefresh bool

func init() {
	statsCmd.Flags().BoolVar(&statsRefresh, "refresh", false, "Reload the catalog before summarizing")
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := buildClient(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := cmd.Context()
	if statsRefresh {
		if _, err := client.Refresh(ctx); err != nil {
			return friendlyError(err)
		}
	}

	stats, err := client.Stats(ctx)
	if err != nil {
		return friendlyError(err)
	}
	return outputStats(cmd, stats)
}
