package tree

import "strings"

// LineMode is one column of a node's tree connector.
type LineMode int

const (
	Indentation        LineMode = iota // blank filler, root column
	LastChild                          // └─ this node has no following sibling
	MiddleChild                        // ├─ this node has following siblings
	ChildOfLastChild                   // ancestor was a last child, no line
	ChildOfMiddleChild                 // │ ancestor has following siblings
)

// String returns the directive name
func (m LineMode) String() string {
	switch m {
	case LastChild:
		return "last-child"
	case MiddleChild:
		return "middle-child"
	case ChildOfLastChild:
		return "child-of-last-child"
	case ChildOfMiddleChild:
		return "child-of-middle-child"
	default:
		return "indentation"
	}
}

// Glyphs maps line directives to the strings drawn for them.
type Glyphs struct {
	Indentation        string
	LastChild          string
	MiddleChild        string
	ChildOfLastChild   string
	ChildOfMiddleChild string
}

// DefaultGlyphs uses refined minimal connectors: ├─ └─ │
var DefaultGlyphs = Glyphs{
	Indentation:        "",
	LastChild:          "└─",
	MiddleChild:        "├─",
	ChildOfLastChild:   "  ",
	ChildOfMiddleChild: "│ ",
}

// ASCIIGlyphs draws connectors for terminals without box-drawing characters.
var ASCIIGlyphs = Glyphs{
	Indentation:        "",
	LastChild:          "`-",
	MiddleChild:        "|-",
	ChildOfLastChild:   "  ",
	ChildOfMiddleChild: "| ",
}

// For returns the glyph for a directive.
func (g Glyphs) For(m LineMode) string {
	switch m {
	case LastChild:
		return g.LastChild
	case MiddleChild:
		return g.MiddleChild
	case ChildOfLastChild:
		return g.ChildOfLastChild
	case ChildOfMiddleChild:
		return g.ChildOfMiddleChild
	default:
		return g.Indentation
	}
}

// RenderPrefix joins the glyphs for prefix.
func RenderPrefix(prefix []LineMode, g Glyphs) string {
	var sb strings.Builder
	for _, m := range prefix {
		sb.WriteString(g.For(m))
	}
	return sb.String()
}

// BuildTreePrefix computes line directives for every node, depth-first.
// Each node gets one directive per depth level: the root column, one per
// intermediate ancestor, and its own. Roots count as last children.
// Returns roots for chaining.
func BuildTreePrefix[T Record](roots []*Node[T]) []*Node[T] {
	type frame struct {
		node *Node[T]
		path []bool // last-child flag per depth, own entry last
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: roots[i], path: []bool{true}})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f.node.prefix = prefixFromPath(f.path)

		kids := f.node.children
		for i := len(kids) - 1; i >= 0; i-- {
			path := make([]bool, len(f.path)+1)
			copy(path, f.path)
			path[len(f.path)] = i == len(kids)-1
			stack = append(stack, frame{node: kids[i], path: path})
		}
	}
	return roots
}

func prefixFromPath(path []bool) []LineMode {
	depth := len(path) - 1
	prefix := make([]LineMode, len(path))
	for i, last := range path {
		switch {
		case i == 0:
			prefix[i] = Indentation
		case i < depth && last:
			prefix[i] = ChildOfLastChild
		case i < depth:
			prefix[i] = ChildOfMiddleChild
		case last:
			prefix[i] = LastChild
		default:
			prefix[i] = MiddleChild
		}
	}
	return prefix
}

// FlatTree returns every node in pre-order: each node followed by its whole
// subtree before the next sibling. Visibility is ignored.
func FlatTree[T Record](roots []*Node[T]) []*Node[T] {
	flat := make([]*Node[T], 0, len(roots))
	stack := make([]*Node[T], 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		flat = append(flat, n)
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return flat
}
