// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog owns the taxonomy snapshot shared by every consumer.
// A Service is created once at startup and passed to the HTTP handlers,
// the CLI and the MCP tools. Snapshots are immutable; Reload builds a new
// one and swaps it in atomically.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lifecat/internal/fixtures"
	"lifecat/internal/models"
	"lifecat/internal/search"
	"lifecat/internal/taxonomy"
)

// ErrNotFound is returned for category ids that are not in the snapshot.
var ErrNotFound = errors.New("category not found")

// Snapshot is one immutable build of the taxonomy.
type Snapshot struct {
	Taxonomy *taxonomy.Index
	Search   *search.Index
	Version  string
	LoadedAt time.Time
}

// Service builds and serves taxonomy snapshots.
type Service struct {
	source fixtures.Source

	mu      sync.Mutex // serializes builds
	current atomic.Pointer[Snapshot]
}

// New returns a Service reading from source. Nothing is loaded until
// Initialize or the first query.
func New(source fixtures.Source) *Service {
	return &Service{source: source}
}

// Initialize builds the first snapshot. Calling it again is a no-op.
func (s *Service) Initialize(ctx context.Context) error {
	if s.current.Load() != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Load() != nil {
		return nil
	}

	snap, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.current.Store(snap)
	return nil
}

// Reload builds a fresh snapshot from the source and replaces the current
// one. On error the current snapshot stays in place.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	prev := s.current.Swap(snap)
	if prev != nil && prev.Version != snap.Version {
		slog.Info("category snapshot replaced", "from", prev.Version, "to", snap.Version)
	}
	return snap, nil
}

// Snapshot returns the current snapshot, initializing on first use.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s.current.Load(), nil
}

// Loaded reports whether a snapshot has been built.
func (s *Service) Loaded() bool {
	return s.current.Load() != nil
}

func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	tax, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}

	flat := taxonomy.Flatten(tax.Mains)
	idx := taxonomy.BuildHierarchy(flat)

	snap := &Snapshot{
		Taxonomy: idx,
		Search:   search.New(idx),
		Version:  tax.Version,
		LoadedAt: time.Now(),
	}

	slog.Info("category snapshot built",
		"version", snap.Version,
		"categories", idx.Len(),
		"main_categories", len(idx.Roots()),
		"duration", time.Since(start).String(),
	)
	return snap, nil
}

// Search runs a grouped substring query against the current snapshot.
func (s *Service) Search(ctx context.Context, term string) (search.Result, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return search.Result{}, err
	}
	return snap.Search.Query(term), nil
}

// Category looks up one category by id.
func (s *Service) Category(ctx context.Context, id int) (*models.Category, error) {
	_, c, err := s.lookup(ctx, id)
	return c, err
}

// Descendants returns the sorted ids below id.
func (s *Service) Descendants(ctx context.Context, id int) ([]int, error) {
	snap, _, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Taxonomy.SortedDescendantIDs(id), nil
}

// Path returns the chain from the top-level ancestor down to id.
func (s *Service) Path(ctx context.Context, id int) ([]*models.Category, error) {
	snap, _, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Taxonomy.Path(id), nil
}

func (s *Service) lookup(ctx context.Context, id int) (*Snapshot, *models.Category, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	c, ok := snap.Taxonomy.Get(id)
	if !ok {
		return nil, nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return snap, c, nil
}
