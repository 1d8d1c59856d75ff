// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lifecat/internal/cache"
	"lifecat/internal/catalog"
	"lifecat/internal/models"
	"lifecat/internal/search"
)

// Categories serves the read-only taxonomy API. Search responses go
// through the Valkey cache when one is configured; searchCache may be nil.
type Categories struct {
	catalog     *catalog.Service
	searchCache *cache.SearchCache
}

// NewCategories creates the category handler group.
func NewCategories(svc *catalog.Service, searchCache *cache.SearchCache) *Categories {
	return &Categories{catalog: svc, searchCache: searchCache}
}

// List returns every category as a flat list in depth-first order.
func (c *Categories) List(w http.ResponseWriter, r *http.Request) {
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.FlatList(snap.Taxonomy.All()))
}

// Main returns the top-level categories without their subtrees.
func (c *Categories) Main(w http.ResponseWriter, r *http.Request) {
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.FlatList(snap.Taxonomy.MainCategories()))
}

// Tree returns the nested hierarchy. The optional depth parameter limits
// how many levels below the main categories are included.
func (c *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	depth := -1
	if raw := r.URL.Query().Get("depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "depth must be a non-negative integer")
			return
		}
		depth = n
	}

	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Taxonomy.Tree(depth))
}

// Get returns one category with its direct children.
func (c *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	cat, err := c.catalog.Category(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		models.Category
		Children []models.Category `json:"children"`
	}{cat.Flat(), models.FlatList(cat.Children)})
}

// Children returns the direct children of a category.
func (c *Categories) Children(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	cat, err := c.catalog.Category(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.FlatList(cat.Children))
}

// Descendants returns the sorted ids of every category below id.
func (c *Categories) Descendants(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ids, err := c.catalog.Descendants(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":             id,
		"descendant_ids": ids,
	})
}

// Path returns the chain from the main category down to id.
func (c *Categories) Path(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	path, err := c.catalog.Path(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.FlatList(path))
}

// Find looks up a subcategory of a main category by exact name and
// returns it together with its name path.
func (c *Categories) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")
	if msg := validateName(name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	if _, known := snap.Taxonomy.Get(id); !known {
		writeError(w, http.StatusNotFound, "category "+strconv.Itoa(id)+" not found")
		return
	}
	found := snap.Taxonomy.FindByName(id, name)
	if found == nil {
		writeError(w, http.StatusNotFound, "no subcategory named "+strconv.Quote(name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": found.Flat(),
		"path":     snap.Taxonomy.PathByName(id, name),
	})
}

// BySlug returns every category with the given slug.
func (c *Categories) BySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}
	matches := snap.Taxonomy.BySlug(slug)
	if len(matches) == 0 {
		writeError(w, http.StatusNotFound, "no category with slug "+strconv.Quote(slug))
		return
	}
	writeJSON(w, http.StatusOK, models.FlatList(matches))
}

// Search runs a case-insensitive substring search and groups the hits by
// main category. An empty query yields an empty result.
func (c *Categories) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if msg := validateQuery(q); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	snap, ok := c.snapshot(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	key := cache.SearchKey(snap.Version, search.Normalize(q))
	if body, hit := c.searchCache.Get(ctx, key); hit {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Cache", "HIT")
		w.Write(body)
		return
	}

	body, err := json.Marshal(snap.Search.Query(q))
	if err != nil {
		slog.Error("encode search result failed", "term", q, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	c.searchCache.Set(ctx, key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache", "MISS")
	w.Write(body)
}

// Reload rebuilds the snapshot from the fixture source and clears the
// search cache. A failed reload keeps the previous snapshot.
func (c *Categories) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := c.catalog.Reload(ctx)
	if err != nil {
		slog.Error("category reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	cleared := c.searchCache.InvalidateAll(ctx)

	writeJSON(w, http.StatusOK, map[string]any{
		"version":         snap.Version,
		"categories":      snap.Taxonomy.Len(),
		"main_categories": len(snap.Taxonomy.Roots()),
		"loaded_at":       snap.LoadedAt.Format(time.RFC3339),
		"cache_cleared":   cleared,
	})
}

// snapshot fetches the current snapshot, answering 503 when the taxonomy
// cannot be loaded.
func (c *Categories) snapshot(w http.ResponseWriter, r *http.Request) (*catalog.Snapshot, bool) {
	snap, err := c.catalog.Snapshot(r.Context())
	if err != nil {
		slog.Error("category snapshot unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "category data unavailable")
		return nil, false
	}
	return snap, true
}

// fail maps a catalog error to a response.
func (c *Categories) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.Error("category lookup failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusServiceUnavailable, "category data unavailable")
}

// parseID reads the {id} URL parameter, answering 400 when it is not a
// positive integer.
func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return 0, false
	}
	return id, true
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
