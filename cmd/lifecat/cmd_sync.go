package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"lifecat/internal/database"
	"lifecat/internal/models"
	"lifecat/internal/store"
	"lifecat/internal/taxonomy"
)

func newSyncCmd(a *app) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the taxonomy into PostgreSQL",
		Long: "sync runs pending migrations and replaces the categories table with\n" +
			"the current snapshot in a single transaction. With --verify the stored\n" +
			"rows are read back and compared with the snapshot.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := a.sync(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Synced %d categories (version %s)\n", info.Count, info.Version)
			if !verify {
				return nil
			}

			problems, err := a.verifyMirror(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range problems {
				fmt.Fprintln(out, p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("stored categories differ from snapshot (%d problems)", len(problems))
			}
			fmt.Fprintln(out, "Stored categories match the snapshot")
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "compare the stored tree with the snapshot after syncing")
	return cmd
}

// openStore connects to PostgreSQL and applies migrations. The caller
// closes the returned handle.
func (a *app) openStore(ctx context.Context) (*store.CategoryStore, *sql.DB, error) {
	db, err := database.Connect(ctx, a.cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewCategoryStore(db), db, nil
}

// sync writes the current snapshot to PostgreSQL. The connection is
// opened for the duration of the call only.
func (a *app) sync(ctx context.Context) (*store.SyncInfo, error) {
	snap, err := a.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cs, db, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if last, err := cs.LastSync(ctx); err == nil && last != nil && last.Version == snap.Version {
		slog.Info("categories already in sync", "version", last.Version, "categories", last.Count)
		return last, nil
	}

	if err := cs.Sync(ctx, snap.Version, snap.Taxonomy.All()); err != nil {
		return nil, fmt.Errorf("sync categories: %w", err)
	}
	info, err := cs.LastSync(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("categories synced", "version", info.Version, "categories", info.Count)
	return info, nil
}

// verifyMirror rebuilds the tree from the stored rows and reports how it
// differs from the live snapshot.
func (a *app) verifyMirror(ctx context.Context) ([]string, error) {
	snap, err := a.svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cs, db, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	stored, err := cs.Tree(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stored tree: %w", err)
	}
	problems := compareTrees(snap.Taxonomy, stored)
	slog.Info("stored categories verified", "version", snap.Version, "problems", len(problems))
	return problems, nil
}

// compareTrees lists the categories whose presence, name, icon or parent
// differ between live and stored, in live depth-first order.
func compareTrees(live, stored *taxonomy.Index) []string {
	var problems []string
	for _, c := range live.All() {
		s, ok := stored.Get(c.ID)
		if !ok {
			problems = append(problems, fmt.Sprintf("missing category %d (%s)", c.ID, c.Name))
			continue
		}
		if s.Name != c.Name {
			problems = append(problems, fmt.Sprintf("category %d: name %q, want %q", c.ID, s.Name, c.Name))
		}
		if s.Icon != c.Icon {
			problems = append(problems, fmt.Sprintf("category %d: icon %q, want %q", c.ID, s.Icon, c.Icon))
		}
		if parentOf(s) != parentOf(c) {
			problems = append(problems, fmt.Sprintf("category %d: parent %d, want %d", c.ID, parentOf(s), parentOf(c)))
		}
	}
	for _, s := range stored.All() {
		if _, ok := live.Get(s.ID); !ok {
			problems = append(problems, fmt.Sprintf("unexpected category %d (%s)", s.ID, s.Name))
		}
	}
	return problems
}

// parentOf returns the parent id of c, or -1 for a top-level category.
func parentOf(c *models.Category) int {
	if p := c.ResolvedParent(); p != nil {
		return *p
	}
	return -1
}
