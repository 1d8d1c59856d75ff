package fixtures

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
)

const artManifest = `categories:
  - id: 1
    name: Art
    icon: "🎨"
    file: sub/art.json
`

const artFile = `{"id": 1, "name": "Art", "icon": "🎨", "subcategories": [
  {"name": "Painting", "icon": "🖌️", "subcategories": [{"name": "Watercolor", "icon": "💧"}]}
]}`

func TestLoadEmbedded(t *testing.T) {
	tax, err := Embedded().Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tax.Mains) != 16 {
		t.Fatalf("mains: got %d, want 16", len(tax.Mains))
	}
	if tax.Mains[0].ID != 79 || tax.Mains[15].ID != 94 {
		t.Errorf("main ids: got %d..%d, want 79..94", tax.Mains[0].ID, tax.Mains[15].ID)
	}
	for _, m := range tax.Mains {
		if len(m.Subcategories) == 0 {
			t.Errorf("main %d (%s) has no subcategories", m.ID, m.Name)
		}
	}
	if len(tax.Version) != 12 {
		t.Errorf("version: got %q, want 12 hex chars", tax.Version)
	}
}

func TestLoadNested(t *testing.T) {
	fsys := fstest.MapFS{
		ManifestFile:   {Data: []byte(artManifest)},
		"sub/art.json": {Data: []byte(artFile)},
	}

	tax, err := NewFSSource(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	art := tax.Mains[0]
	if len(art.Subcategories) != 1 || art.Subcategories[0].Name != "Painting" {
		t.Fatalf("subcategories: got %+v", art.Subcategories)
	}
	if got := art.Subcategories[0].Subcategories[0].Name; got != "Watercolor" {
		t.Errorf("nested: got %q, want Watercolor", got)
	}
}

func TestLoadMissingSubcategoryFile(t *testing.T) {
	fsys := fstest.MapFS{
		ManifestFile: {Data: []byte(artManifest)},
	}

	tax, err := NewFSSource(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if len(tax.Mains) != 1 || len(tax.Mains[0].Subcategories) != 0 {
		t.Errorf("expected main category without descendants, got %+v", tax.Mains)
	}
}

func TestLoadMalformedSubcategoryFile(t *testing.T) {
	fsys := fstest.MapFS{
		ManifestFile:   {Data: []byte(artManifest)},
		"sub/art.json": {Data: []byte(`{not json`)},
	}

	tax, err := NewFSSource(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("malformed file should not fail: %v", err)
	}
	if len(tax.Mains[0].Subcategories) != 0 {
		t.Errorf("expected no subcategories, got %d", len(tax.Mains[0].Subcategories))
	}
}

func TestLoadVersionChangesWithContent(t *testing.T) {
	a := fstest.MapFS{
		ManifestFile:   {Data: []byte(artManifest)},
		"sub/art.json": {Data: []byte(artFile)},
	}
	b := fstest.MapFS{
		ManifestFile:   {Data: []byte(artManifest)},
		"sub/art.json": {Data: []byte(`{"subcategories": []}`)},
	}

	ta, err := NewFSSource(a).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	tb, err := NewFSSource(b).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ta.Version == tb.Version {
		t.Errorf("versions should differ, both %q", ta.Version)
	}
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{"valid", artManifest, 1, false},
		{"nameless entry skipped", "categories:\n  - id: 1\n    name: Art\n  - id: 2\n    name: \"  \"\n", 1, false},
		{"duplicate id", "categories:\n  - id: 1\n    name: A\n  - id: 1\n    name: B\n", 0, true},
		{"id in subcategory range", "categories:\n  - id: 1000\n    name: A\n", 0, true},
		{"zero id", "categories:\n  - id: 0\n    name: A\n", 0, true},
		{"empty", "categories: []\n", 0, true},
		{"not yaml", "categories: [\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseManifest([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidManifest) {
					t.Fatalf("err: got %v, want ErrInvalidManifest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len: got %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestLoadCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Embedded().Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err: got %v, want context.Canceled", err)
	}
}
