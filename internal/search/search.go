// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search answers case-insensitive substring queries over category
// names. The taxonomy holds a few hundred short names, so a linear scan
// over pre-lowercased names is all it takes. Ties are ordered with a
// case-insensitive Unicode collation, so accented names sort next to
// their plain spellings.
package search

import (
	"bytes"
	"cmp"
	"encoding/json"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"lifecat/internal/models"
	"lifecat/internal/taxonomy"
)

// Group is a set of matches sharing one top-level ancestor.
type Group struct {
	Ancestor *models.Category   `json:"ancestor"`
	Matches  []*models.Category `json:"matches"`
}

// Result is the full answer to a query.
type Result struct {
	Term         string             `json:"term"`
	Results      []*models.Category `json:"results"`
	Groups       []Group            `json:"groups"`
	TotalMatches int                `json:"total_matches"`
}

// MarshalJSON encodes the ancestor and matches without their subtrees.
func (g Group) MarshalJSON() ([]byte, error) {
	var anc *models.Category
	if g.Ancestor != nil {
		flat := g.Ancestor.Flat()
		anc = &flat
	}
	return json.Marshal(struct {
		Ancestor *models.Category `json:"ancestor"`
		Matches  []models.Category `json:"matches"`
	}{anc, models.FlatList(g.Matches)})
}

// MarshalJSON encodes the result with flat category copies.
func (r Result) MarshalJSON() ([]byte, error) {
	groups := r.Groups
	if groups == nil {
		groups = []Group{}
	}
	return json.Marshal(struct {
		Term         string            `json:"term"`
		Results      []models.Category `json:"results"`
		Groups       []Group           `json:"groups"`
		TotalMatches int               `json:"total_matches"`
	}{r.Term, models.FlatList(r.Results), groups, r.TotalMatches})
}

type entry struct {
	node  *models.Category
	lower string
	key   []byte
}

// Index searches the categories of one taxonomy snapshot.
type Index struct {
	tax     *taxonomy.Index
	entries []entry
	keys    map[int][]byte
}

// New builds a search index over every category in tax.
func New(tax *taxonomy.Index) *Index {
	col := collate.New(language.Und, collate.IgnoreCase)
	var buf collate.Buffer

	all := tax.All()
	idx := &Index{
		tax:     tax,
		entries: make([]entry, 0, len(all)),
		keys:    make(map[int][]byte, len(all)),
	}
	for _, c := range all {
		key := slices.Clone(col.KeyFromString(&buf, c.Name))
		buf.Reset()
		idx.keys[c.ID] = key
		if c.Name == "" {
			continue
		}
		idx.entries = append(idx.entries, entry{node: c, lower: strings.ToLower(c.Name), key: key})
	}
	return idx
}

// Normalize returns the form of term that Search matches against.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Search returns the categories whose name contains term, ignoring case.
// Exact name matches come first, then the rest alphabetically. An empty
// or whitespace-only term matches nothing.
func (s *Index) Search(term string) []*models.Category {
	q := Normalize(term)
	if q == "" {
		return []*models.Category{}
	}

	var hits []entry
	for _, e := range s.entries {
		if strings.Contains(e.lower, q) {
			hits = append(hits, e)
		}
	}

	slices.SortStableFunc(hits, func(a, b entry) int {
		aExact, bExact := a.lower == q, b.lower == q
		if aExact != bExact {
			if aExact {
				return -1
			}
			return 1
		}
		if c := bytes.Compare(a.key, b.key); c != 0 {
			return c
		}
		if c := strings.Compare(a.lower, b.lower); c != 0 {
			return c
		}
		return cmp.Compare(a.node.ID, b.node.ID)
	})

	out := make([]*models.Category, len(hits))
	for i, h := range hits {
		out[i] = h.node
	}
	return out
}

// GroupByTopLevelAncestor buckets results by their top-level ancestor.
// Matches keep their result order; groups are sorted by ancestor name.
func (s *Index) GroupByTopLevelAncestor(results []*models.Category) []Group {
	pos := make(map[int]int)
	groups := []Group{}
	for _, c := range results {
		anc := s.tax.TopLevelAncestor(c.ID)
		if anc == nil {
			continue
		}
		i, ok := pos[anc.ID]
		if !ok {
			i = len(groups)
			pos[anc.ID] = i
			groups = append(groups, Group{Ancestor: anc})
		}
		groups[i].Matches = append(groups[i].Matches, c)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := bytes.Compare(s.keys[a.Ancestor.ID], s.keys[b.Ancestor.ID]); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Ancestor.Name), strings.ToLower(b.Ancestor.Name))
	})
	return groups
}

// Query runs Search and groups the matches.
func (s *Index) Query(term string) Result {
	results := s.Search(term)
	return Result{
		Term:         Normalize(term),
		Results:      results,
		Groups:       s.GroupByTopLevelAncestor(results),
		TotalMatches: len(results),
	}
}
