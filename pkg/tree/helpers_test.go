package tree

import (
	"maps"
	"slices"
	"testing"
)

// rec is a minimal record used across the tree tests.
type rec struct {
	id     string
	parent string
	fields map[string]any
	hint   bool
}

func (r rec) Key() string       { return r.id }
func (r rec) ParentKey() string { return r.parent }
func (r rec) HasChildren() bool { return r.hint }

func (r rec) FieldValue(name string) (any, bool) {
	switch name {
	case "id":
		return r.id, true
	case "parentId":
		if r.parent == "" {
			return nil, false
		}
		return r.parent, true
	}
	v, ok := r.fields[name]
	return v, ok
}

func (r rec) FieldNames() []string {
	names := []string{"id"}
	if r.parent != "" {
		names = append(names, "parentId")
	}
	return append(names, slices.Sorted(maps.Keys(r.fields))...)
}

func named(id, parent, name string) rec {
	return rec{id: id, parent: parent, fields: map[string]any{"name": name}}
}

// chainRecords is the six generation chain, one record per generation.
// The great grand parent has no priority.
func chainRecords() []rec {
	return []rec{
		{id: "ggp", fields: map[string]any{"name": "Great Grand Parent"}},
		{id: "gp", parent: "ggp", fields: map[string]any{"name": "Grand Parent", "priority": 0}},
		{id: "p", parent: "gp", fields: map[string]any{"name": "Parent", "priority": 1}},
		{id: "c", parent: "p", fields: map[string]any{"name": "Child", "priority": 2}},
		{id: "gc", parent: "c", fields: map[string]any{"name": "Grand Child", "priority": 3}},
		{id: "ggc", parent: "gc", fields: map[string]any{"name": "Great Grand Child", "priority": 4}},
	}
}

func without(records []rec, id string) []rec {
	return slices.DeleteFunc(slices.Clone(records), func(r rec) bool { return r.id == id })
}

func keysOf(nodes []*Node[rec]) []string {
	keys := make([]string, len(nodes))
	for i, n := range nodes {
		keys[i] = n.Key
	}
	return keys
}

func mustBuild(t *testing.T, records []rec, idx *Index[rec]) []*Node[rec] {
	t.Helper()
	roots, err := BuildTreeNodes(records, idx)
	if err != nil {
		t.Fatalf("BuildTreeNodes failed: %v", err)
	}
	return roots
}

func newTestIndex() *Index[rec] {
	return NewIndex(IndexOptions[rec]{})
}
