package tree

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"
)

// MergeFunc folds an incoming record into the payload of an existing node.
type MergeFunc[T Record] func(existing, incoming T) T

// ReplacePayload is the default MergeFunc: the incoming record wins.
func ReplacePayload[T Record](_, incoming T) T {
	return incoming
}

// IndexOptions configures reconciliation.
type IndexOptions[T Record] struct {
	DefaultExpanded bool         // expansion state for newly created nodes
	Merge           MergeFunc[T] // nil means ReplacePayload
	Logger          *log.Logger  // nil means log.Default()
}

// Index is the key -> node identity map. Every key maps to exactly one live
// node; reconciliation mutates it in place.
type Index[T Record] struct {
	nodes      map[string]*Node[T]
	tombstones map[string]struct{} // removed keys still named as a parent
	opts       IndexOptions[T]
}

// NewIndex creates an empty identity map.
func NewIndex[T Record](opts IndexOptions[T]) *Index[T] {
	if opts.Merge == nil {
		opts.Merge = ReplacePayload[T]
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Index[T]{
		nodes:      make(map[string]*Node[T]),
		tombstones: make(map[string]struct{}),
		opts:       opts,
	}
}

// Len returns the number of live nodes, placeholders included.
func (idx *Index[T]) Len() int {
	return len(idx.nodes)
}

// Get returns the live node for key.
func (idx *Index[T]) Get(key string) (*Node[T], bool) {
	node, ok := idx.nodes[key]
	return node, ok
}

// Keys returns the live keys in sorted order.
func (idx *Index[T]) Keys() []string {
	return slices.Sorted(maps.Keys(idx.nodes))
}

// Tombstoned reports whether key was removed while records still name it
// as their parent. Such records stay out of the tree until key returns.
func (idx *Index[T]) Tombstoned(key string) bool {
	_, ok := idx.tombstones[key]
	return ok
}

// Nodes calls fn for every live node in key order.
func (idx *Index[T]) Nodes(fn func(*Node[T])) {
	for _, key := range idx.Keys() {
		fn(idx.nodes[key])
	}
}

// Reset drops every node and tombstone.
func (idx *Index[T]) Reset() {
	for _, node := range idx.nodes {
		node.parent = nil
		node.children = nil
	}
	clear(idx.nodes)
	clear(idx.tombstones)
}
