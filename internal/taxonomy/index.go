// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy builds the in-memory category hierarchy from fixture
// data and answers structural queries over it: children, descendants,
// ancestor paths and name lookups.
//
// An Index is immutable once BuildHierarchy returns. Callers share the
// *models.Category nodes it hands out and must not modify them.
package taxonomy

import (
	"slices"

	"lifecat/internal/models"
)

// Index is a category tree rooted at a synthetic root holding all
// top-level categories, plus an id lookup table.
type Index struct {
	roots []*models.Category
	byID  map[int]*models.Category
	order []*models.Category
}

// Roots returns the top-level categories in input order.
func (x *Index) Roots() []*models.Category {
	return slices.Clone(x.roots)
}

// MainCategories is an alias for Roots.
func (x *Index) MainCategories() []*models.Category {
	return x.Roots()
}

// Len returns the number of categories in the index.
func (x *Index) Len() int {
	return len(x.byID)
}

// All returns every category in depth-first order, roots first.
func (x *Index) All() []*models.Category {
	return slices.Clone(x.order)
}

// Get looks up a category by id.
func (x *Index) Get(id int) (*models.Category, bool) {
	c, ok := x.byID[id]
	return c, ok
}

// Children returns the direct children of id, or nil if id is unknown.
func (x *Index) Children(id int) []*models.Category {
	c, ok := x.byID[id]
	if !ok {
		return nil
	}
	return slices.Clone(c.Children)
}

// Subcategories returns the direct children of a main category.
func (x *Index) Subcategories(mainID int) []*models.Category {
	return x.Children(mainID)
}

// Parent returns the parent of id, or nil for roots and unknown ids.
func (x *Index) Parent(id int) *models.Category {
	c, ok := x.byID[id]
	if !ok || c.ParentID == nil {
		return nil
	}
	return x.byID[*c.ParentID]
}

// DescendantIDs returns the ids of every category below id, excluding id
// itself. The traversal is breadth-first and tracks visited ids.
func (x *Index) DescendantIDs(id int) map[int]struct{} {
	out := make(map[int]struct{})
	queue := []int{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		node, ok := x.byID[cur]
		if !ok {
			continue
		}
		for _, c := range node.Children {
			if _, seen := out[c.ID]; seen || c.ID == id {
				continue
			}
			out[c.ID] = struct{}{}
			queue = append(queue, c.ID)
		}
	}
	return out
}

// SortedDescendantIDs returns DescendantIDs as an ascending slice.
func (x *Index) SortedDescendantIDs(id int) []int {
	set := x.DescendantIDs(id)
	ids := make([]int, 0, len(set))
	for k := range set {
		ids = append(ids, k)
	}
	slices.Sort(ids)
	return ids
}

// Path returns the chain of categories from the top-level ancestor down
// to id. Unknown ids yield nil.
func (x *Index) Path(id int) []*models.Category {
	node, ok := x.byID[id]
	if !ok {
		return nil
	}

	var path []*models.Category
	for node != nil {
		path = append(path, node)
		if node.ParentID == nil {
			break
		}
		node = x.byID[*node.ParentID]
	}
	slices.Reverse(path)
	return path
}

// TopLevelAncestor returns the root above id, or id's own category if it
// is top-level. Unknown ids yield nil.
func (x *Index) TopLevelAncestor(id int) *models.Category {
	path := x.Path(id)
	if len(path) == 0 {
		return nil
	}
	return path[0]
}

// InMainCategory returns the main category and all of its descendants in
// depth-first order. Unknown ids yield nil.
func (x *Index) InMainCategory(mainID int) []*models.Category {
	root, ok := x.byID[mainID]
	if !ok {
		return nil
	}
	var out []*models.Category
	var visit func(n *models.Category)
	visit = func(n *models.Category) {
		out = append(out, n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(root)
	return out
}

// FindByName returns the first category below mainID, in depth-first
// order, whose name equals name exactly.
func (x *Index) FindByName(mainID int, name string) *models.Category {
	root, ok := x.byID[mainID]
	if !ok {
		return nil
	}
	var find func(nodes []*models.Category) *models.Category
	find = func(nodes []*models.Category) *models.Category {
		for _, n := range nodes {
			if n.Name == name {
				return n
			}
			if found := find(n.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return find(root.Children)
}

// PathByName returns the names from mainID down to the first descendant
// named name. It returns nil if the main category is unknown, and nil if
// no descendant matches.
func (x *Index) PathByName(mainID int, name string) []string {
	target := x.FindByName(mainID, name)
	if target == nil {
		return nil
	}
	path := x.Path(target.ID)
	names := make([]string, len(path))
	for i, c := range path {
		names[i] = c.Name
	}
	return names
}

// BySlug returns every category with the given slug in depth-first order.
func (x *Index) BySlug(s string) []*models.Category {
	var out []*models.Category
	for _, c := range x.order {
		if c.Slug == s {
			out = append(out, c)
		}
	}
	return out
}

// Tree returns a copy of the hierarchy cut off below maxDepth, where roots
// sit at depth 0. A negative maxDepth keeps every level. The copies can
// be modified freely.
func (x *Index) Tree(maxDepth int) []*models.Category {
	var clone func(nodes []*models.Category) []*models.Category
	clone = func(nodes []*models.Category) []*models.Category {
		out := make([]*models.Category, 0, len(nodes))
		for _, n := range nodes {
			cp := *n
			cp.Children = nil
			if maxDepth < 0 || n.Depth < maxDepth {
				cp.Children = clone(n.Children)
			}
			if len(cp.Children) == 0 {
				cp.Children = nil
			}
			out = append(out, &cp)
		}
		return out
	}
	return clone(x.roots)
}
