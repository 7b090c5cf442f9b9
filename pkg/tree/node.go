// Package tree maintains a sorted, filterable, incrementally reconciled forest
// built from flat parent-referencing records, and flattens it into rows for
// table rendering.
package tree

import "slices"

// Record is a flat value with an identity key and an optional parent key.
// An empty ParentKey marks a root.
type Record interface {
	Key() string
	ParentKey() string
}

// ChildrenHinter is implemented by records that know whether they have
// children before those children are loaded.
type ChildrenHinter interface {
	HasChildren() bool
}

// FieldValuer exposes named payload fields for sorting and filtering.
// FieldValue reports false for absent fields.
type FieldValuer interface {
	FieldValue(name string) (any, bool)
	FieldNames() []string
}

// Status describes whether a node's declared children are materialized.
type Status int

const (
	StatusNormal        Status = iota
	StatusEmptyChildren        // record hints at children, none are loaded
)

// String returns a short display name for the status
func (s Status) String() string {
	if s == StatusEmptyChildren {
		return "empty-children"
	}
	return "normal"
}

// Node wraps a record with tree structure and view state.
// Node pointers are stable for as long as the key stays in the input.
type Node[T Record] struct {
	Key      string
	Payload  T
	Expanded bool
	Visible  bool

	parent      *Node[T] // back-reference only, never owning
	children    []*Node[T]
	status      Status
	prefix      []LineMode
	placeholder bool
}

func newNode[T Record](key string, expanded bool) *Node[T] {
	return &Node[T]{Key: key, Expanded: expanded, Visible: true}
}

// Parent returns the parent node, or nil for a root.
func (n *Node[T]) Parent() *Node[T] {
	return n.parent
}

// Children returns the ordered child nodes. The slice must not be modified.
func (n *Node[T]) Children() []*Node[T] {
	return n.children
}

// Status returns the node's materialization status.
func (n *Node[T]) Status() Status {
	return n.status
}

// Prefix returns the line directives computed by the last BuildTreePrefix.
func (n *Node[T]) Prefix() []LineMode {
	return n.prefix
}

// IsPlaceholder reports whether the node was synthesized for a parent key
// that has no record yet.
func (n *Node[T]) IsPlaceholder() bool {
	return n.placeholder
}

// IsRoot reports whether the node has no parent.
func (n *Node[T]) IsRoot() bool {
	return n.parent == nil
}

// Depth returns the number of ancestors.
func (n *Node[T]) Depth() int {
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// IsLastChild reports whether the node is the last of its siblings.
// Roots always count as last children.
func (n *Node[T]) IsLastChild() bool {
	if n.parent == nil {
		return true
	}
	siblings := n.parent.children
	return len(siblings) > 0 && siblings[len(siblings)-1] == n
}

// Field returns a payload field by name. Placeholders have no fields.
func (n *Node[T]) Field(name string) (any, bool) {
	if n.placeholder {
		return nil, false
	}
	fv, ok := any(n.Payload).(FieldValuer)
	if !ok {
		return nil, false
	}
	return fv.FieldValue(name)
}

// FieldNames returns the payload's field names, or nil for placeholders.
func (n *Node[T]) FieldNames() []string {
	if n.placeholder {
		return nil
	}
	if fv, ok := any(n.Payload).(FieldValuer); ok {
		return fv.FieldNames()
	}
	return nil
}

func (n *Node[T]) appendChild(child *Node[T]) {
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node[T]) removeChild(child *Node[T]) {
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
	if child.parent == n {
		child.parent = nil
	}
}

// detach unlinks the node from its parent and releases its children.
func (n *Node[T]) detach() {
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	for _, child := range n.children {
		child.parent = nil
	}
	n.children = nil
}

func (n *Node[T]) refreshStatus() {
	n.status = StatusNormal
	if n.placeholder || len(n.children) > 0 {
		return
	}
	if hinter, ok := any(n.Payload).(ChildrenHinter); ok && hinter.HasChildren() {
		n.status = StatusEmptyChildren
	}
}
