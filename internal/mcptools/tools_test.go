package mcptools

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/mark3labs/mcp-go/mcp"

	"lifecat/internal/catalog"
	"lifecat/internal/fixtures"
	"lifecat/internal/render"
)

var artFS = fstest.MapFS{
	fixtures.ManifestFile: {Data: []byte("categories:\n  - id: 1\n    name: Art\n    icon: \"🎨\"\n    file: art.json\n")},
	"art.json": {Data: []byte(`{"subcategories": [{"name": "Painting", "icon": "🖌️", "subcategories": [{"name": "Watercolor", "icon": "💧"}]}]}`)},
}

func newTools(t *testing.T, fsys fstest.MapFS) *tools {
	t.Helper()
	rn, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return &tools{svc: catalog.New(fixtures.NewFSSource(fsys)), rn: rn}
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// resultText returns the first text block of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", res.Content[0])
	return ""
}

func TestSearchTool(t *testing.T) {
	tl := newTools(t, artFS)

	res, err := tl.search(context.Background(), request(map[string]any{"query": "WATER"}))
	if err != nil || res.IsError {
		t.Fatalf("search: err=%v result=%+v", err, res)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "1 match for \"water\"") || !strings.Contains(text, "💧 Watercolor [1001]") {
		t.Errorf("search output:\n%s", text)
	}

	res, _ = tl.search(context.Background(), request(map[string]any{"query": "  "}))
	if !res.IsError {
		t.Error("blank query should be a tool error")
	}
}

func TestTreeTool(t *testing.T) {
	tl := newTools(t, artFS)

	res, _ := tl.tree(context.Background(), request(nil))
	if text := resultText(t, res); !strings.Contains(text, "    💧 Watercolor [1001]") {
		t.Errorf("full tree:\n%s", text)
	}

	res, _ = tl.tree(context.Background(), request(map[string]any{"max_depth": float64(0)}))
	if text := resultText(t, res); text != "🎨 Art [1]\n" {
		t.Errorf("depth 0 tree: got %q", text)
	}
}

func TestPathTool(t *testing.T) {
	tl := newTools(t, artFS)

	res, _ := tl.path(context.Background(), request(map[string]any{"id": float64(1001)}))
	if text := resultText(t, res); text != "Art > Painting > Watercolor\n" {
		t.Errorf("path: got %q", text)
	}

	for _, args := range []map[string]any{nil, {"id": float64(77)}, {"id": float64(-1)}} {
		res, _ := tl.path(context.Background(), request(args))
		if !res.IsError {
			t.Errorf("args %v: expected tool error", args)
		}
	}
}

func TestDescendantsTool(t *testing.T) {
	tl := newTools(t, artFS)

	res, _ := tl.descendants(context.Background(), request(map[string]any{"id": float64(1)}))
	if text := resultText(t, res); text != "1000\t🖌️ Painting\n1001\t💧 Watercolor\n" {
		t.Errorf("descendants: got %q", text)
	}

	res, _ = tl.descendants(context.Background(), request(map[string]any{"id": float64(1001)}))
	if text := resultText(t, res); text != "No categories.\n" {
		t.Errorf("leaf descendants: got %q", text)
	}

	res, _ = tl.descendants(context.Background(), request(map[string]any{"id": float64(5)}))
	if !res.IsError {
		t.Error("unknown id should be a tool error")
	}
}

func TestMainTool(t *testing.T) {
	tl := newTools(t, artFS)
	res, _ := tl.main(context.Background(), request(nil))
	if text := resultText(t, res); text != "1\t🎨 Art\n" {
		t.Errorf("main: got %q", text)
	}
}

func TestToolsReportLoadFailure(t *testing.T) {
	tl := newTools(t, fstest.MapFS{})
	res, err := tl.main(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	if !res.IsError {
		t.Error("missing manifest should be a tool error")
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	rn, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	s := NewServer(catalog.New(fixtures.Embedded()), rn, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}
