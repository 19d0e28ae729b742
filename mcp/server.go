// Package mcp exposes wing catalog administration as MCP (Model Context
// Protocol) tools over stdio, so MCP-compatible agent frameworks can drive
// the same operations as the CLI.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/paraflightlog/wingadmin"
)

// CatalogClient is the subset of the wingadmin client the tools need.
// *wingadmin.Client satisfies it; tests inject fakes.
type CatalogClient interface {
	Catalog(ctx context.Context) (*wingadmin.Catalog, error)
	Refresh(ctx context.Context) (*wingadmin.Catalog, error)
	Stats(ctx context.Context) (wingadmin.CatalogStats, error)
	SaveWing(ctx context.Context, params wingadmin.WingParams) (*wingadmin.Wing, error)
	DeleteWing(ctx context.Context, id string) error
	SaveManufacturer(ctx context.Context, params wingadmin.ManufacturerParams) (*wingadmin.Manufacturer, error)
	DeleteManufacturer(ctx context.Context, id string) error
}

// Server wraps the MCP server with catalog tools.
type Server struct {
	client    CatalogClient
	mcpServer *server.MCPServer
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content string
	IsError bool
}

// ToolInfo represents a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates a new MCP server with catalog tools registered.
func NewServer(client CatalogClient) *Server {
	s := &Server{client: client}

	s.mcpServer = server.NewMCPServer(
		"wingadmin",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage processes a raw JSON-RPC message and returns a response.
// This is primarily for testing the MCP protocol layer.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "wings_list", Description: "List all wings in the catalog"},
		{Name: "wings_save", Description: "Create or edit a wing in the catalog"},
		{Name: "wings_delete", Description: "Delete a wing (and its image) from the catalog"},
		{Name: "manufacturers_list", Description: "List all manufacturers in the catalog"},
		{Name: "manufacturers_save", Description: "Create or edit a manufacturer"},
		{Name: "manufacturers_delete", Description: "Delete a manufacturer with no remaining wings"},
		{Name: "catalog_stats", Description: "Summarize the catalog (counts and last update)"},
	}
}

// CallTool executes a tool by name with the given arguments.
// This is used for testing and direct invocation.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	switch name {
	case "wings_list":
		return s.handleWingsList(ctx, args)
	case "wings_save":
		return s.handleWingsSave(ctx, args)
	case "wings_delete":
		return s.handleWingsDelete(ctx, args)
	case "manufacturers_list":
		return s.handleManufacturersList(ctx, args)
	case "manufacturers_save":
		return s.handleManufacturersSave(ctx, args)
	case "manufacturers_delete":
		return s.handleManufacturersDelete(ctx, args)
	case "catalog_stats":
		return s.handleStats(ctx, args)
	default:
		return &ToolResult{Content: fmt.Sprintf("unknown tool: %s", name), IsError: true}, nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("wings_list",
		mcp.WithDescription("List all wings in the catalog in display order. Set refresh=true to bypass the in-memory snapshot."),
		mcp.WithBoolean("refresh",
			mcp.Description("Reload the catalog from the published document first"),
		),
	), s.mcpHandle(s.handleWingsList))

	s.mcpServer.AddTool(mcp.NewTool("wings_save",
		mcp.WithDescription("Create or edit a wing. Omit id to create (the ID is derived from manufacturer and model); pass id to edit that wing in place."),
		mcp.WithString("id",
			mcp.Description("Wing ID to edit; omit to create"),
		),
		mcp.WithString("manufacturer",
			mcp.Description("Manufacturer ID the wing belongs to"),
			mcp.Required(),
		),
		mcp.WithString("model",
			mcp.Description("Model name, e.g. 'Rush 6'"),
			mcp.Required(),
		),
		mcp.WithString("type",
			mcp.Description("Certification category: EN-A, EN-B, EN-C, EN-D, CCC"),
			mcp.Required(),
		),
		mcp.WithArray("sizes",
			mcp.Description("Size labels in meters, e.g. [\"23\", \"25\", \"27\"]"),
			mcp.WithStringItems(),
		),
		mcp.WithNumber("year",
			mcp.Description("Release year (optional)"),
		),
	), s.mcpHandle(s.handleWingsSave))

	s.mcpServer.AddTool(mcp.NewTool("wings_delete",
		mcp.WithDescription("Delete a wing from the catalog. Its image blob is deleted best-effort afterwards."),
		mcp.WithString("id",
			mcp.Description("Wing ID to delete"),
			mcp.Required(),
		),
	), s.mcpHandle(s.handleWingsDelete))

	s.mcpServer.AddTool(mcp.NewTool("manufacturers_list",
		mcp.WithDescription("List all manufacturers with their wing counts."),
	), s.mcpHandle(s.handleManufacturersList))

	s.mcpServer.AddTool(mcp.NewTool("manufacturers_save",
		mcp.WithDescription("Create or edit a manufacturer. Pass previous_id to edit; an id change cascades onto every referencing wing."),
		mcp.WithString("previous_id",
			mcp.Description("Current ID of the manufacturer being edited; omit to create"),
		),
		mcp.WithString("id",
			mcp.Description("Manufacturer ID; omitted on create it is derived from the name"),
		),
		mcp.WithString("name",
			mcp.Description("Display name, e.g. 'Ozone'"),
			mcp.Required(),
		),
	), s.mcpHandle(s.handleManufacturersSave))

	s.mcpServer.AddTool(mcp.NewTool("manufacturers_delete",
		mcp.WithDescription("Delete a manufacturer. Rejected while any wing still references it."),
		mcp.WithString("id",
			mcp.Description("Manufacturer ID to delete"),
			mcp.Required(),
		),
	), s.mcpHandle(s.handleManufacturersDelete))

	s.mcpServer.AddTool(mcp.NewTool("catalog_stats",
		mcp.WithDescription("Summarize the catalog: wing count, manufacturer count, last update time."),
	), s.mcpHandle(s.handleStats))
}

type toolHandler func(ctx context.Context, args map[string]any) (*ToolResult, error)

func (s *Server) mcpHandle(h toolHandler) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := h(ctx, req.GetArguments())
		if err != nil {
			return nil, err
		}
		return toMCPResult(result), nil
	}
}

func toMCPResult(r *ToolResult) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: r.Content,
			},
		},
	}
	if r.IsError {
		result.IsError = true
	}
	return result
}

func errorResult(err error) *ToolResult {
	return &ToolResult{Content: err.Error(), IsError: true}
}

func jsonResult(v any) (*ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &ToolResult{Content: string(data)}, nil
}

// Internal handlers

func (s *Server) handleWingsList(ctx context.Context, args map[string]any) (*ToolResult, error) {
	var catalog *wingadmin.Catalog
	var err error
	if refresh, _ := args["refresh"].(bool); refresh {
		catalog, err = s.client.Refresh(ctx)
	} else {
		catalog, err = s.client.Catalog(ctx)
	}
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(catalog.Wings)
}

func (s *Server) handleWingsSave(ctx context.Context, args map[string]any) (*ToolResult, error) {
	params := wingadmin.WingParams{
		Manufacturer: stringArg(args, "manufacturer"),
		Model:        stringArg(args, "model"),
		Type:         wingadmin.WingType(stringArg(args, "type")),
		Sizes:        stringSliceArg(args, "sizes"),
	}
	params.ID = stringArg(args, "id")
	if year, ok := args["year"].(float64); ok {
		y := int(year)
		params.Year = &y
	}

	if params.Manufacturer == "" || params.Model == "" {
		return &ToolResult{Content: "manufacturer and model are required", IsError: true}, nil
	}

	wing, err := s.client.SaveWing(ctx, params)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(wing)
}

func (s *Server) handleWingsDelete(ctx context.Context, args map[string]any) (*ToolResult, error) {
	id := stringArg(args, "id")
	if id == "" {
		return &ToolResult{Content: "id is required", IsError: true}, nil
	}
	if err := s.client.DeleteWing(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return &ToolResult{Content: fmt.Sprintf("deleted wing %s", id)}, nil
}

func (s *Server) handleManufacturersList(ctx context.Context, args map[string]any) (*ToolResult, error) {
	catalog, err := s.client.Catalog(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	type entry struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		WingCount int    `json:"wing_count"`
	}
	entries := make([]entry, 0, len(catalog.Manufacturers))
	for _, m := range catalog.Manufacturers {
		entries = append(entries, entry{
			ID:        m.ID,
			Name:      m.Name,
			WingCount: catalog.WingCountFor(m.ID),
		})
	}
	return jsonResult(entries)
}

func (s *Server) handleManufacturersSave(ctx context.Context, args map[string]any) (*ToolResult, error) {
	params := wingadmin.ManufacturerParams{
		PreviousID: stringArg(args, "previous_id"),
		ID:         stringArg(args, "id"),
		Name:       stringArg(args, "name"),
	}
	if params.Name == "" {
		return &ToolResult{Content: "name is required", IsError: true}, nil
	}

	manufacturer, err := s.client.SaveManufacturer(ctx, params)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(manufacturer)
}

func (s *Server) handleManufacturersDelete(ctx context.Context, args map[string]any) (*ToolResult, error) {
	id := stringArg(args, "id")
	if id == "" {
		return &ToolResult{Content: "id is required", IsError: true}, nil
	}
	if err := s.client.DeleteManufacturer(ctx, id); err != nil {
		return errorResult(err), nil
	}
	return &ToolResult{Content: fmt.Sprintf("deleted manufacturer %s", id)}, nil
}

func (s *Server) handleStats(ctx context.Context, args map[string]any) (*ToolResult, error) {
	stats, err := s.client.Stats(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(stats)
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
