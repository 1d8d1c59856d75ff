// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lifecat/internal/models"
	"lifecat/internal/taxonomy"
)

// CategoryStore mirrors taxonomy snapshots into the categories table.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// SyncInfo describes the most recent snapshot written by Sync.
type SyncInfo struct {
	Version  string
	Count    int
	SyncedAt time.Time
}

const categoryColumns = `id, name, slug, icon, parent_id, depth`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	var parentID sql.NullInt64
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &parentID, &c.Depth)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = models.IntPtr(int(parentID.Int64))
	}
	return &c, nil
}

// Sync replaces the stored categories with the given snapshot in a single
// transaction. nodes must be in depth-first order, as taxonomy.Index.All
// returns them.
func (s *CategoryStore) Sync(ctx context.Context, version string, nodes []*models.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (id, name, slug, icon, parent_id, depth, position, snapshot_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for pos, c := range nodes {
		var parentID sql.NullInt64
		if c.ParentID != nil {
			parentID = sql.NullInt64{Int64: int64(*c.ParentID), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Slug, c.Icon, parentID, c.Depth, pos, version); err != nil {
			return fmt.Errorf("insert category %d: %w", c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO category_syncs (snapshot_version, category_count) VALUES ($1, $2)`,
		version, len(nodes),
	); err != nil {
		return fmt.Errorf("record sync: %w", err)
	}

	return tx.Commit()
}

// List returns all stored categories in their synced order.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Tree rebuilds the hierarchy from the stored rows.
func (s *CategoryStore) Tree(ctx context.Context) (*taxonomy.Index, error) {
	flat, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return taxonomy.BuildHierarchy(flat), nil
}

// LastSync returns the most recent sync record, or nil if none exists.
func (s *CategoryStore) LastSync(ctx context.Context) (*SyncInfo, error) {
	var info SyncInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT snapshot_version, category_count, synced_at
		FROM category_syncs ORDER BY id DESC LIMIT 1
	`).Scan(&info.Version, &info.Count, &info.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last sync: %w", err)
	}
	return &info, nil
}
