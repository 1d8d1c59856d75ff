// Package mcptools exposes the category taxonomy as MCP tools so that
// assistants can browse and search it over stdio.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"lifecat/internal/catalog"
	"lifecat/internal/logging"
	"lifecat/internal/models"
	"lifecat/internal/render"
)

// NewServer returns an MCP server with every category tool registered.
func NewServer(svc *catalog.Service, rn *render.Renderer, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"lifecat",
		version,
		server.WithToolCapabilities(true),
	)
	Register(s, svc, rn)
	return s
}

// Register adds the category tools to s.
func Register(s *server.MCPServer, svc *catalog.Service, rn *render.Renderer) {
	t := &tools{svc: svc, rn: rn}
	s.AddTool(searchTool(), t.search)
	s.AddTool(treeTool(), t.tree)
	s.AddTool(pathTool(), t.path)
	s.AddTool(descendantsTool(), t.descendants)
	s.AddTool(mainTool(), t.main)
}

type tools struct {
	svc *catalog.Service
	rn  *render.Renderer
}

// --- search_categories ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search_categories",
		mcp.WithDescription("Search life categories by name (case-insensitive substring). Results are grouped by main category."),
		mcp.WithString("query",
			mcp.Description("Text to look for in category names, e.g. \"paint\""),
			mcp.Required(),
		),
	)
}

func (t *tools) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return toolError(fmt.Errorf("query is required"))
	}
	res, err := t.svc.Search(ctx, query)
	if err != nil {
		return toolError(err)
	}
	return t.text("search", res)
}

// --- category_tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("category_tree",
		mcp.WithDescription("Show the category hierarchy as an indented tree with ids."),
		mcp.WithNumber("max_depth",
			mcp.Description("Levels below the main categories to include. Omit for the full tree; 0 lists main categories only."),
		),
	)
}

func (t *tools) tree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	depth := req.GetInt("max_depth", -1)
	if depth < -1 {
		return toolError(fmt.Errorf("max_depth must not be negative"))
	}
	snap, err := t.svc.Snapshot(ctx)
	if err != nil {
		return toolError(err)
	}
	return t.text("tree", snap.Taxonomy.Tree(depth))
}

// --- category_path ---

func pathTool() mcp.Tool {
	return mcp.NewTool("category_path",
		mcp.WithDescription("Show the chain of categories from the main category down to the given id."),
		mcp.WithNumber("id",
			mcp.Description("Category id, e.g. 94 or 1203"),
			mcp.Required(),
		),
	)
}

func (t *tools) path(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", 0)
	if id <= 0 {
		return toolError(fmt.Errorf("id must be a positive integer"))
	}
	path, err := t.svc.Path(ctx, id)
	if err != nil {
		return toolError(err)
	}
	return t.text("path", path)
}

// --- category_descendants ---

func descendantsTool() mcp.Tool {
	return mcp.NewTool("category_descendants",
		mcp.WithDescription("List every category below the given id, at any depth."),
		mcp.WithNumber("id",
			mcp.Description("Category id"),
			mcp.Required(),
		),
	)
}

func (t *tools) descendants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", 0)
	if id <= 0 {
		return toolError(fmt.Errorf("id must be a positive integer"))
	}
	snap, err := t.svc.Snapshot(ctx)
	if err != nil {
		return toolError(err)
	}
	if _, ok := snap.Taxonomy.Get(id); !ok {
		return toolError(fmt.Errorf("category %d: %w", id, catalog.ErrNotFound))
	}
	ids := snap.Taxonomy.SortedDescendantIDs(id)
	cats := make([]*models.Category, 0, len(ids))
	for _, d := range ids {
		if c, ok := snap.Taxonomy.Get(d); ok {
			cats = append(cats, c)
		}
	}
	return t.text("list", cats)
}

// --- main_categories ---

func mainTool() mcp.Tool {
	return mcp.NewTool("main_categories",
		mcp.WithDescription("List the top-level life categories with their ids."),
	)
}

func (t *tools) main(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.svc.Snapshot(ctx)
	if err != nil {
		return toolError(err)
	}
	return t.text("list", snap.Taxonomy.MainCategories())
}

// --- helpers ---

func (t *tools) text(name string, data any) (*mcp.CallToolResult, error) {
	out, err := t.rn.String(name, data)
	if err != nil {
		logging.New("mcp").Error("render tool output failed", "template", name, "error", err)
		return toolError(err)
	}
	return mcp.NewToolResultText(out), nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
