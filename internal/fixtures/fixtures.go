// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package fixtures loads the bundled life-category taxonomy. A YAML
// manifest lists the top-level categories and maps each one to the JSON
// file that holds its nested subcategories. The default data set is
// embedded in the binary; a directory on disk can be used instead.
package fixtures

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest's path relative to the fixture root.
const ManifestFile = "manifest.yaml"

// MaxMainID is the largest id a top-level category may use. Synthesized
// subcategory ids are allocated above it.
const MaxMainID = 999

// ErrInvalidManifest is returned when the manifest cannot be used at all.
var ErrInvalidManifest = errors.New("invalid manifest")

//go:embed data
var embedded embed.FS

// Node is one subcategory in a fixture file.
type Node struct {
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	Subcategories []Node `json:"subcategories"`
}

// MainCategory is a top-level category together with its subcategory tree.
type MainCategory struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
	File string `yaml:"file"`

	// Subcategories is filled from File by Load. Empty when the file is
	// missing or unreadable.
	Subcategories []Node `yaml:"-"`
}

// Taxonomy is the parsed fixture set.
type Taxonomy struct {
	Mains []MainCategory
	// Version identifies the fixture content; it changes whenever the
	// manifest or any subcategory file changes.
	Version string
}

type manifest struct {
	Categories []MainCategory `yaml:"categories"`
}

type subcategoryFile struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	Subcategories []Node `json:"subcategories"`
}

// Source produces a Taxonomy.
type Source interface {
	Load(ctx context.Context) (*Taxonomy, error)
}

// FSSource loads fixtures from an fs.FS rooted at the fixture directory.
type FSSource struct {
	fsys fs.FS
	dir  string
}

// NewFSSource returns a source reading from fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// NewDirSource returns a source reading from a directory on disk.
func NewDirSource(dir string) *FSSource {
	return &FSSource{fsys: os.DirFS(dir), dir: dir}
}

// Embedded returns a source over the fixtures compiled into the binary.
func Embedded() *FSSource {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		// Only fails for an invalid path literal.
		panic(fmt.Sprintf("fixtures: embedded data: %v", err))
	}
	return NewFSSource(sub)
}

// Dir returns the on-disk directory backing the source, or "" for
// embedded data.
func (s *FSSource) Dir() string {
	return s.dir
}

// Load parses the manifest and every subcategory file it references.
// Manifest problems are fatal; a missing or malformed subcategory file
// only costs that category its descendants.
func (s *FSSource) Load(ctx context.Context) (*Taxonomy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := fs.ReadFile(s.fsys, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	mains, err := parseManifest(raw)
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	h.Write(raw)

	for i := range mains {
		m := &mains[i]
		if m.File == "" {
			slog.Warn("main category has no subcategory file", "id", m.ID, "name", m.Name)
			continue
		}
		data, err := fs.ReadFile(s.fsys, m.File)
		if err != nil {
			slog.Warn("subcategory file unavailable", "id", m.ID, "file", m.File, "error", err)
			continue
		}
		h.Write(data)

		var f subcategoryFile
		if err := json.Unmarshal(data, &f); err != nil {
			slog.Warn("subcategory file malformed", "id", m.ID, "file", m.File, "error", err)
			continue
		}
		if f.ID != 0 && f.ID != m.ID {
			slog.Warn("subcategory file id mismatch", "manifest_id", m.ID, "file_id", f.ID, "file", m.File)
		}
		m.Subcategories = f.Subcategories
	}

	return &Taxonomy{
		Mains:   mains,
		Version: hex.EncodeToString(h.Sum(nil))[:12],
	}, nil
}

// parseManifest decodes and validates the manifest. Entries without a
// name are dropped with a warning; bad or duplicate ids are rejected.
func parseManifest(raw []byte) ([]MainCategory, error) {
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	seen := make(map[int]bool, len(m.Categories))
	mains := make([]MainCategory, 0, len(m.Categories))
	for _, c := range m.Categories {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			slog.Warn("skipping main category without a name", "id", c.ID)
			continue
		}
		if c.ID <= 0 || c.ID > MaxMainID {
			return nil, fmt.Errorf("%w: category %q has id %d outside 1..%d", ErrInvalidManifest, c.Name, c.ID, MaxMainID)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidManifest, c.ID)
		}
		seen[c.ID] = true
		mains = append(mains, c)
	}

	if len(mains) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidManifest)
	}
	return mains, nil
}
