package main

import (
	wingmcp "github.com/paraflightlog/wingadmin/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for coding agent integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio.

This exposes the catalog operations as tools for MCP-compatible agents.

Configuration example:

  {
    "mcpServers": {
      "wingadmin": {
        "command": "wingadmin",
        "args": ["mcp"],
        "env": {
          "GITHUB_TOKEN": "ghp_xxxx"
        }
      }
    }
  }

Environment variables:
  GITHUB_TOKEN        Token for mutating operations (or a saved session)
  WINGADMIN_OWNER     Repository owner (default: paraflightlog)
  WINGADMIN_REPO      Catalog repository (default: paraflightlog-wings)
  WINGADMIN_BRANCH    Target branch (default: main)`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// Create the catalog client - this persists for the server lifetime
	client, err := buildClient(loadConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	// Start MCP server over stdio
	server := wingmcp.NewServer(client)
	return server.Run()
}
