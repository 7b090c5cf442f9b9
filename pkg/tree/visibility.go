package tree

// SetExpanded sets the node's expansion flag without touching descendants.
func SetExpanded[T Record](node *Node[T], expanded bool) {
	node.Expanded = expanded
}

// SetVisible sets the node's visibility flag without touching descendants.
func SetVisible[T Record](node *Node[T], visible bool) {
	node.Visible = visible
}

// ExpandOrCollapseChildren recomputes visibility below node after its
// expansion state changed. Only node's subtree is visited.
func ExpandOrCollapseChildren[T Record](node *Node[T]) {
	stack := []*Node[T]{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		show := n.Visible && n.Expanded
		for _, child := range n.children {
			child.Visible = show
			stack = append(stack, child)
		}
	}
}

// RecomputeVisibility marks roots visible and propagates down every tree.
func RecomputeVisibility[T Record](roots []*Node[T]) {
	for _, root := range roots {
		root.Visible = true
		ExpandOrCollapseChildren(root)
	}
}

// SetExpandedAll sets every node's expansion flag and recomputes visibility.
func SetExpandedAll[T Record](roots []*Node[T], expanded bool) {
	for _, node := range FlatTree(roots) {
		node.Expanded = expanded
	}
	RecomputeVisibility(roots)
}

// ExpandAncestors expands every ancestor of node so that it becomes visible.
func ExpandAncestors[T Record](node *Node[T]) {
	var top *Node[T]
	for p := node.parent; p != nil; p = p.parent {
		p.Expanded = true
		top = p
	}
	if top != nil {
		top.Visible = true
		ExpandOrCollapseChildren(top)
	}
}
