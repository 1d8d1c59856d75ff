// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "encoding/json"

// Category is a node in the life-category taxonomy. Top-level ("main")
// categories have a nil ParentID.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Icon     string `json:"icon"`
	ParentID *int   `json:"parent_id"`

	// Parent is the legacy spelling of ParentID accepted on input.
	// ParentID takes precedence when both are set.
	Parent *int `json:"parent,omitempty"`

	// Virtual fields populated when the hierarchy is built.
	Depth    int         `json:"depth"`
	Children []*Category `json:"children,omitempty"`
}

// UnmarshalJSON decodes c and drops the legacy parent reference whenever
// "parent_id" is present, so an explicit null marks a top-level category.
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if _, ok := keys["parent_id"]; ok {
		p.Parent = nil
	}
	*c = Category(p)
	return nil
}

// ResolvedParent returns the parent reference, preferring ParentID over Parent.
// After UnmarshalJSON, Parent only survives when parent_id was absent.
func (c *Category) ResolvedParent() *int {
	if c.ParentID != nil {
		return c.ParentID
	}
	return c.Parent
}

// IsRoot reports whether c is a top-level category.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsLeaf reports whether c has no children.
func (c *Category) IsLeaf() bool {
	return len(c.Children) == 0
}

// Flat returns a copy of c without children, suitable for flat listings.
func (c *Category) Flat() Category {
	out := *c
	out.Children = nil
	out.Parent = nil
	return out
}

// FlatList converts nodes into child-free copies, preserving order.
func FlatList(nodes []*Category) []Category {
	out := make([]Category, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Flat())
	}
	return out
}

// IntPtr returns a pointer to v. Handy for building ParentID values.
func IntPtr(v int) *int {
	return &v
}
