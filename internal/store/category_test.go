package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lifecat/internal/fixtures"
	"lifecat/internal/taxonomy"
)

func artSnapshot() *taxonomy.Index {
	return taxonomy.BuildHierarchy(taxonomy.Flatten([]fixtures.MainCategory{{
		ID:   1,
		Name: "Art",
		Icon: "🎨",
		Subcategories: []fixtures.Node{{
			Name:          "Painting",
			Subcategories: []fixtures.Node{{Name: "Watercolor", Icon: "💧"}},
		}},
	}}))
}

func TestCategoryStoreSyncAndList(t *testing.T) {
	db := testDB(t)
	t.Cleanup(func() { cleanCategories(t, db) })
	s := NewCategoryStore(db)
	ctx := context.Background()

	idx := artSnapshot()
	if err := s.Sync(ctx, "v1", idx.All()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var got []string
	for _, c := range items {
		got = append(got, c.Name)
	}
	if diff := cmp.Diff([]string{"Art", "Painting", "Watercolor"}, got); diff != "" {
		t.Errorf("List (-want +got):\n%s", diff)
	}
	if items[0].ParentID != nil {
		t.Error("Art should have no parent")
	}
	if items[2].ParentID == nil || *items[2].ParentID != items[1].ID {
		t.Errorf("Watercolor parent: got %v", items[2].ParentID)
	}
	if items[1].Icon != taxonomy.DefaultIcon {
		t.Errorf("Painting icon: got %q", items[1].Icon)
	}
}

func TestCategoryStoreSyncReplaces(t *testing.T) {
	db := testDB(t)
	t.Cleanup(func() { cleanCategories(t, db) })
	s := NewCategoryStore(db)
	ctx := context.Background()

	if err := s.Sync(ctx, "v1", artSnapshot().All()); err != nil {
		t.Fatal(err)
	}
	smaller := taxonomy.BuildHierarchy(taxonomy.Flatten([]fixtures.MainCategory{{ID: 2, Name: "Food"}}))
	if err := s.Sync(ctx, "v2", smaller.All()); err != nil {
		t.Fatal(err)
	}

	items, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "Food" {
		t.Errorf("expected only Food after resync, got %+v", items)
	}

	info, err := s.LastSync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info == nil || info.Version != "v2" || info.Count != 1 {
		t.Errorf("LastSync: got %+v", info)
	}
}

func TestCategoryStoreTree(t *testing.T) {
	db := testDB(t)
	t.Cleanup(func() { cleanCategories(t, db) })
	s := NewCategoryStore(db)
	ctx := context.Background()

	if err := s.Sync(ctx, "v1", artSnapshot().All()); err != nil {
		t.Fatal(err)
	}

	tree, err := s.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if got := tree.SortedDescendantIDs(1); len(got) != 2 {
		t.Errorf("descendants of Art: got %v", got)
	}
}
