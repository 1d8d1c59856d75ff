// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render formats taxonomy data as plain text for the CLI and the
// MCP tools. Layouts live in embedded text templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"lifecat/internal/models"
	"lifecat/internal/search"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer executes the embedded text templates.
type Renderer struct {
	templates *template.Template
	funcMap   template.FuncMap
}

// New parses every embedded template.
func New() (*Renderer, error) {
	r := &Renderer{
		funcMap: template.FuncMap{
			// indent returns two spaces per depth level.
			"indent": func(depth int) string {
				return strings.Repeat("  ", max(depth, 0))
			},
			"names": func(cs []*models.Category) []string {
				out := make([]string, len(cs))
				for i, c := range cs {
					out[i] = c.Name
				}
				return out
			},
			"join": strings.Join,
			"plural": func(n int, one, many string) string {
				if n == 1 {
					return one
				}
				return many
			},
		},
	}

	tmpl, err := template.New("lifecat").Funcs(r.funcMap).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.templates = tmpl
	return r, nil
}

// Tree writes the hierarchy below roots, one indented line per category.
func (r *Renderer) Tree(w io.Writer, roots []*models.Category) error {
	return r.execute(w, "tree", roots)
}

// List writes one "id<TAB>icon name" line per category.
func (r *Renderer) List(w io.Writer, cats []*models.Category) error {
	return r.execute(w, "list", cats)
}

// Path writes the names of a root-to-node chain on one line.
func (r *Renderer) Path(w io.Writer, path []*models.Category) error {
	return r.execute(w, "path", path)
}

// Search writes a grouped search result.
func (r *Renderer) Search(w io.Writer, res search.Result) error {
	return r.execute(w, "search", res)
}

// String renders a named template into a string.
func (r *Renderer) String(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.execute(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
