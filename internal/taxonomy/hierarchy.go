// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"cmp"
	"log/slog"
	"slices"

	"lifecat/internal/models"
	"lifecat/internal/slug"
)

// maxFallbackRoots caps how many entries are promoted when the input
// contains no root at all.
const maxFallbackRoots = 5

// BuildHierarchy links flat category records into a tree and indexes
// them by id. It never fails: unknown parents demote a node to the root
// list, parent cycles are broken, and an input without roots gets up to
// five promoted entries. The result is always acyclic.
func BuildHierarchy(records []models.Category) *Index {
	idx := &Index{byID: make(map[int]*models.Category, len(records))}

	// First pass: one node per distinct id.
	nodes := make([]*models.Category, 0, len(records))
	for _, r := range records {
		if _, dup := idx.byID[r.ID]; dup {
			slog.Warn("duplicate category id skipped", "id", r.ID, "name", r.Name)
			continue
		}
		n := &models.Category{
			ID:       r.ID,
			Name:     r.Name,
			Slug:     r.Slug,
			Icon:     r.Icon,
			ParentID: r.ResolvedParent(),
			Children: []*models.Category{},
		}
		if n.Slug == "" {
			n.Slug = slug.Generate(n.Name)
		}
		idx.byID[n.ID] = n
		nodes = append(nodes, n)
	}

	// Second pass: attach each node to its parent, in input order.
	for _, n := range nodes {
		if n.ParentID == nil {
			idx.roots = append(idx.roots, n)
			continue
		}
		parent, ok := idx.byID[*n.ParentID]
		if !ok {
			slog.Warn("category parent not found, treating as top-level",
				"id", n.ID, "name", n.Name, "parent_id", *n.ParentID)
			n.ParentID = nil
			idx.roots = append(idx.roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	if len(idx.roots) == 0 && len(nodes) > 0 {
		fallback := nodes[:min(maxFallbackRoots, len(nodes))]
		slog.Warn("no top-level categories found, promoting fallback roots", "count", len(fallback))
		for _, n := range fallback {
			idx.promote(n)
		}
	}

	idx.breakCycles(nodes)
	idx.index()
	return idx
}

// promote detaches n from its parent and appends it to the root list.
func (x *Index) promote(n *models.Category) {
	if n.ParentID != nil {
		if parent, ok := x.byID[*n.ParentID]; ok {
			parent.Children = slices.DeleteFunc(parent.Children, func(c *models.Category) bool {
				return c == n
			})
		}
		n.ParentID = nil
	}
	x.roots = append(x.roots, n)
}

// breakCycles promotes nodes that are unreachable from every root. An
// unreached node either sits on a parent cycle or hangs below one, so
// walking up its parents always ends in a loop. Promoting the smallest
// id on that loop makes the whole component reachable again while every
// other node keeps its parent.
func (x *Index) breakCycles(nodes []*models.Category) {
	reached := make(map[int]bool, len(nodes))
	var mark func(n *models.Category)
	mark = func(n *models.Category) {
		if reached[n.ID] {
			return
		}
		reached[n.ID] = true
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, r := range x.roots {
		mark(r)
	}

	for len(reached) < len(nodes) {
		var start *models.Category
		for _, n := range nodes {
			if !reached[n.ID] && (start == nil || n.ID < start.ID) {
				start = n
			}
		}
		pick := x.cycleMin(start)
		slog.Warn("category parent cycle broken", "id", pick.ID, "name", pick.Name, "parent_id", *pick.ParentID)
		x.promote(pick)
		mark(pick)
	}
}

// cycleMin follows parent links up from n, which must be unreachable
// from every root, and returns the smallest-id node on the loop it ends in.
func (x *Index) cycleMin(n *models.Category) *models.Category {
	step := make(map[int]int)
	var walk []*models.Category
	for {
		if i, ok := step[n.ID]; ok {
			loop := walk[i:]
			return slices.MinFunc(loop, func(a, b *models.Category) int {
				return cmp.Compare(a.ID, b.ID)
			})
		}
		step[n.ID] = len(walk)
		walk = append(walk, n)
		n = x.byID[*n.ParentID]
	}
}

// index records depth-first order and depth for every node.
func (x *Index) index() {
	x.order = make([]*models.Category, 0, len(x.byID))
	var visit func(n *models.Category, depth int)
	visit = func(n *models.Category, depth int) {
		n.Depth = depth
		x.order = append(x.order, n)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range x.roots {
		visit(r, 0)
	}
}
