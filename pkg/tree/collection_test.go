package tree

import (
	"errors"
	"slices"
	"testing"
)

func newTestCollection(pageSize int) *Collection[rec] {
	return NewCollection(CollectionConfig[rec]{
		Columns: []Column[rec]{
			{ID: "name", Header: "Name"},
			{ID: "priority", Header: "Priority"},
		},
		Sort:     SortState{Field: "name"},
		PageSize: pageSize,
	})
}

func TestCollection_ItemsFollowExpansion(t *testing.T) {
	c := newTestCollection(0)
	if err := c.Update(familyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got := keysOf(c.Items().Items); !slices.Equal(got, []string{"other", "r"}) {
		t.Fatalf("collapsed items = %v, want [other r]", got)
	}

	if err := c.Toggle("r"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if got := keysOf(c.Items().Items); !slices.Equal(got, []string{"other", "r", "a", "b"}) {
		t.Errorf("expanded items = %v, want [other r a b]", got)
	}

	if err := c.SetExpanded("r", false); err != nil {
		t.Fatalf("SetExpanded failed: %v", err)
	}
	if got := len(c.Items().Items); got != 2 {
		t.Errorf("items after collapse = %d, want 2", got)
	}

	c.ExpandAll()
	if got := len(c.Items().Items); got != 6 {
		t.Errorf("items after expand all = %d, want 6", got)
	}
	c.CollapseAll()
	if got := len(c.Items().Items); got != 2 {
		t.Errorf("items after collapse all = %d, want 2", got)
	}
}

func TestCollection_UnknownKey(t *testing.T) {
	c := newTestCollection(0)
	if err := c.Update(familyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	for name, err := range map[string]error{
		"toggle": c.Toggle("nope"),
		"set":    c.SetExpanded("nope", true),
		"reveal": c.Reveal("nope"),
	} {
		if !errors.Is(err, ErrUnknownKey) {
			t.Errorf("%s: err = %v, want ErrUnknownKey", name, err)
		}
	}
}

func TestCollection_FilterShowsCollapsedMatches(t *testing.T) {
	c := newTestCollection(0)
	if err := c.Update(familyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	c.SetFilter("b1")
	state := c.Items()
	if got := keysOf(state.Items); !slices.Equal(got, []string{"r", "b", "b1"}) {
		t.Errorf("filtered items = %v, want [r b b1]", got)
	}
	if state.Filter.Text != "b1" || state.Filter.Matches != 3 {
		t.Errorf("filter props = %+v", state.Filter)
	}

	c.SetFilter("")
	if got := len(c.Items().Items); got != 2 {
		t.Errorf("items after clearing filter = %d, want 2", got)
	}
}

func TestCollection_Pagination(t *testing.T) {
	c := newTestCollection(2)
	if err := c.Update(familyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	c.ExpandAll()

	state := c.Items()
	if state.Pagination.Pages != 3 {
		t.Fatalf("pages = %d, want 3", state.Pagination.Pages)
	}
	if got := keysOf(state.Items); !slices.Equal(got, []string{"other", "r"}) {
		t.Errorf("page 0 = %v", got)
	}

	c.SetPage(2)
	if got := keysOf(c.Items().Items); !slices.Equal(got, []string{"b", "b1"}) {
		t.Errorf("page 2 = %v", got)
	}

	c.SetPage(10)
	if page := c.Items().Pagination.Page; page != 2 {
		t.Errorf("page clamped to %d, want 2", page)
	}

	c.CollapseAll()
	if page := c.Items().Pagination.Page; page != 0 {
		t.Errorf("page after collapse = %d, want 0", page)
	}
}

func TestCollection_SetSortAndPrefixes(t *testing.T) {
	c := newTestCollection(0)
	if err := c.Update(branchyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	c.ExpandAll()

	c.SetSort(SortState{Field: "name", Descending: true})
	if got := keysOf(c.Items().Items); !slices.Equal(got, []string{"r2", "r1", "b", "a", "a2", "a1"}) {
		t.Errorf("descending items = %v", got)
	}
	b, _ := c.Node("b")
	if got := RenderPrefix(b.Prefix(), DefaultGlyphs); got != "├─" {
		t.Errorf("b prefix = %q", got)
	}
	if c.Sort().Field != "name" || !c.Sort().Descending {
		t.Errorf("sort state = %+v", c.Sort())
	}
}

func TestCollection_FailedUpdateKeepsView(t *testing.T) {
	c := newTestCollection(0)
	if err := c.Update(familyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	before := keysOf(c.Nodes())

	err := c.Update([]rec{named("a", "b", "A"), named("b", "a", "B")})
	if !errors.Is(err, ErrCyclicHierarchy) {
		t.Fatalf("err = %v, want ErrCyclicHierarchy", err)
	}
	if got := keysOf(c.Nodes()); !slices.Equal(got, before) {
		t.Errorf("nodes after failed update = %v, want %v", got, before)
	}
	if c.Len() != 6 {
		t.Errorf("len after failed update = %d, want 6", c.Len())
	}
}

func TestCollection_UpdatePreservesExpansion(t *testing.T) {
	c := newTestCollection(0)
	if err := c.Update(familyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := c.Toggle("r"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	records := append(familyRecords(), named("c", "r", "C"))
	if err := c.Update(records); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := keysOf(c.Items().Items); !slices.Equal(got, []string{"other", "r", "a", "b", "c"}) {
		t.Errorf("items = %v, want [other r a b c]", got)
	}
}

func TestCollection_RevealAndReset(t *testing.T) {
	c := newTestCollection(0)
	if err := c.Update(familyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := c.Reveal("a1"); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if got := keysOf(c.Items().Items); !slices.Contains(got, "a1") {
		t.Errorf("revealed node missing from items %v", got)
	}

	c.SetFilter("x")
	c.Reset()
	if c.Len() != 0 || len(c.Items().Items) != 0 || c.FilterText() != "" {
		t.Errorf("reset left state behind: len=%d filter=%q", c.Len(), c.FilterText())
	}
}

func TestCollection_SetFilterFields(t *testing.T) {
	c := newTestCollection(0)
	if err := c.Update(familyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	c.SetFilter("root")
	if got := keysOf(c.Items().Items); !slices.Equal(got, []string{"other", "r"}) {
		t.Fatalf("all-field rows = %v, want [other r]", got)
	}

	c.SetFilterFields([]string{"id"})
	state := c.Items()
	if len(state.Items) != 0 {
		t.Errorf("id-only rows = %v, want none", keysOf(state.Items))
	}
	if !slices.Equal(state.Filter.Fields, []string{"id"}) {
		t.Errorf("filter fields = %v, want [id]", state.Filter.Fields)
	}

	c.SetFilterFields(nil)
	if got := len(c.Items().Items); got != 2 || c.FilterFields() != nil {
		t.Errorf("rows after clearing fields = %d, fields = %v", got, c.FilterFields())
	}
}

func TestCollection_RevealClampsPage(t *testing.T) {
	c := newTestCollection(2)
	if err := c.Update(familyRecords()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := c.Reveal("b1"); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	state := c.Items()
	if state.Pagination.Pages != 3 {
		t.Errorf("pages after reveal = %d, want 3", state.Pagination.Pages)
	}
}
