package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lifecat/internal/fixtures"
	"lifecat/internal/models"
	"lifecat/internal/taxonomy"
)

func artIndex() (*Index, *taxonomy.Index) {
	tax := taxonomy.BuildHierarchy(taxonomy.Flatten([]fixtures.MainCategory{{
		ID:   1,
		Name: "Art",
		Icon: "🎨",
		Subcategories: []fixtures.Node{{
			Name:          "Painting",
			Icon:          "🖌️",
			Subcategories: []fixtures.Node{{Name: "Watercolor", Icon: "💧"}},
		}},
	}}))
	return New(tax), tax
}

func names(cs []*models.Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestSearchArtScenario(t *testing.T) {
	idx, _ := artIndex()

	results := idx.Search("wat")
	if diff := cmp.Diff([]string{"Watercolor"}, names(results)); diff != "" {
		t.Fatalf("Search (-want +got):\n%s", diff)
	}

	groups := idx.GroupByTopLevelAncestor(results)
	if len(groups) != 1 {
		t.Fatalf("groups: got %d, want 1", len(groups))
	}
	if groups[0].Ancestor.Name != "Art" {
		t.Errorf("ancestor: got %q, want Art", groups[0].Ancestor.Name)
	}
	if diff := cmp.Diff([]string{"Watercolor"}, names(groups[0].Matches)); diff != "" {
		t.Errorf("matches (-want +got):\n%s", diff)
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	idx, _ := artIndex()
	for _, term := range []string{"", "   ", "\t\n"} {
		got := idx.Search(term)
		if got == nil || len(got) != 0 {
			t.Errorf("Search(%q): got %v, want empty non-nil slice", term, got)
		}
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	tax, err := fixtures.Embedded().Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	idx := New(taxonomy.BuildHierarchy(taxonomy.Flatten(tax.Mains)))

	for _, pair := range [][2]string{{"art", "ART"}, {"paint", "PaInT"}, {"go", " GO "}} {
		lower, upper := idx.Search(pair[0]), idx.Search(pair[1])
		if len(lower) == 0 {
			t.Errorf("Search(%q) found nothing", pair[0])
		}
		if diff := cmp.Diff(names(lower), names(upper)); diff != "" {
			t.Errorf("Search(%q) vs Search(%q) (-lower +upper):\n%s", pair[0], pair[1], diff)
		}
	}
}

func TestSearchOrdering(t *testing.T) {
	tax := taxonomy.BuildHierarchy([]models.Category{
		{ID: 1, Name: "Music"},
		{ID: 2, Name: "Piano Music", ParentID: models.IntPtr(1)},
		{ID: 3, Name: "music", ParentID: models.IntPtr(1)},
		{ID: 4, Name: "Ambient Music", ParentID: models.IntPtr(1)},
		{ID: 5, Name: "Musicals", ParentID: models.IntPtr(1)},
	})
	idx := New(tax)

	got := idx.Search("music")

	var ids []int
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	// Exact matches (1, 3) first by id, then partials alphabetically.
	if diff := cmp.Diff([]int{1, 3, 4, 5, 2}, ids); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestSearchOrdersAccentedNames(t *testing.T) {
	tax := taxonomy.BuildHierarchy([]models.Category{
		{ID: 1, Name: "Zeta Club"},
		{ID: 2, Name: "Étude"},
		{ID: 3, Name: "Eagle Watching"},
	})
	idx := New(tax)

	if diff := cmp.Diff([]string{"Eagle Watching", "Étude", "Zeta Club"}, names(idx.Search("e"))); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}

	var ancestors []string
	for _, g := range idx.Query("e").Groups {
		ancestors = append(ancestors, g.Ancestor.Name)
	}
	if diff := cmp.Diff([]string{"Eagle Watching", "Étude", "Zeta Club"}, ancestors); diff != "" {
		t.Errorf("group order (-want +got):\n%s", diff)
	}
}

func TestSearchNoMatches(t *testing.T) {
	idx, _ := artIndex()
	if got := idx.Search("zzz"); len(got) != 0 {
		t.Errorf("got %v, want none", names(got))
	}
}

func TestGroupsSortedByAncestorName(t *testing.T) {
	tax := taxonomy.BuildHierarchy([]models.Category{
		{ID: 1, Name: "Travel"},
		{ID: 2, Name: "art"},
		{ID: 10, Name: "Road Trips", ParentID: models.IntPtr(1)},
		{ID: 11, Name: "Trip Planning", ParentID: models.IntPtr(10)},
		{ID: 20, Name: "Trip Sketching", ParentID: models.IntPtr(2)},
	})
	idx := New(tax)

	res := idx.Query("trip")

	if res.TotalMatches != 3 {
		t.Fatalf("total: got %d, want 3", res.TotalMatches)
	}
	var ancestors []string
	for _, g := range res.Groups {
		ancestors = append(ancestors, g.Ancestor.Name)
	}
	if diff := cmp.Diff([]string{"art", "Travel"}, ancestors); diff != "" {
		t.Errorf("group order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Road Trips", "Trip Planning"}, names(res.Groups[1].Matches)); diff != "" {
		t.Errorf("travel matches (-want +got):\n%s", diff)
	}
}

func TestMainCategoryGroupsUnderItself(t *testing.T) {
	idx, _ := artIndex()
	groups := idx.GroupByTopLevelAncestor(idx.Search("art"))
	if len(groups) != 1 || groups[0].Ancestor.ID != 1 || groups[0].Matches[0].ID != 1 {
		t.Errorf("got %+v", groups)
	}
}

func TestQueryNormalizesTerm(t *testing.T) {
	idx, _ := artIndex()
	if got := idx.Query("  WAT ").Term; got != "wat" {
		t.Errorf("term: got %q, want %q", got, "wat")
	}
}

func TestResultJSONIsFlat(t *testing.T) {
	idx, _ := artIndex()
	body, err := json.Marshal(idx.Query("art"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Term    string           `json:"term"`
		Results []map[string]any `json:"results"`
		Groups  []struct {
			Ancestor map[string]any   `json:"ancestor"`
			Matches  []map[string]any `json:"matches"`
		} `json:"groups"`
		TotalMatches int `json:"total_matches"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.TotalMatches != 1 || len(decoded.Results) != 1 {
		t.Fatalf("got %s", body)
	}
	if _, nested := decoded.Results[0]["children"]; nested {
		t.Errorf("result carries children: %s", body)
	}
	if _, nested := decoded.Groups[0].Ancestor["children"]; nested {
		t.Errorf("ancestor carries children: %s", body)
	}
}

func TestEmptyResultJSON(t *testing.T) {
	idx, _ := artIndex()
	body, err := json.Marshal(idx.Query(""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"term":"","results":[],"groups":[],"total_matches":0}`
	if string(body) != want {
		t.Errorf("got %s, want %s", body, want)
	}
}
