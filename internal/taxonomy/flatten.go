// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"log/slog"
	"strings"

	"lifecat/internal/fixtures"
	"lifecat/internal/models"
	"lifecat/internal/slug"
)

// SubcategoryIDBase is the first id handed out to a synthesized
// subcategory. Main category ids are always below it.
const SubcategoryIDBase = fixtures.MaxMainID + 1

// DefaultIcon is used for categories whose fixture entry has no icon.
const DefaultIcon = "🧩"

// Flattener converts nested fixture trees into flat category records,
// allocating subcategory ids from a monotonically increasing counter.
type Flattener struct {
	next int
}

// NewFlattener returns a Flattener whose first synthesized id is base.
func NewFlattener(base int) *Flattener {
	return &Flattener{next: base}
}

// Flatten returns every main category followed by all of its descendants
// in depth-first order, using ids starting at SubcategoryIDBase.
func Flatten(mains []fixtures.MainCategory) []models.Category {
	return NewFlattener(SubcategoryIDBase).Flatten(mains)
}

// Flatten walks each main category's subcategory tree. Nodes without a
// name are skipped together with their subtree.
func (f *Flattener) Flatten(mains []fixtures.MainCategory) []models.Category {
	var out []models.Category
	for _, m := range mains {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			slog.Warn("skipping main category without a name", "id", m.ID)
			continue
		}
		out = append(out, newRecord(m.ID, name, m.Icon, nil))
		out = f.walk(out, m.Subcategories, m.ID)
	}
	return out
}

func (f *Flattener) walk(out []models.Category, nodes []fixtures.Node, parentID int) []models.Category {
	for _, n := range nodes {
		name := strings.TrimSpace(n.Name)
		if name == "" {
			slog.Warn("skipping subcategory without a name", "parent_id", parentID)
			continue
		}
		id := f.next
		f.next++
		out = append(out, newRecord(id, name, n.Icon, models.IntPtr(parentID)))
		out = f.walk(out, n.Subcategories, id)
	}
	return out
}

func newRecord(id int, name, icon string, parentID *int) models.Category {
	if icon == "" {
		icon = DefaultIcon
	}
	return models.Category{
		ID:       id,
		Name:     name,
		Slug:     slug.Generate(name),
		Icon:     icon,
		ParentID: parentID,
	}
}
