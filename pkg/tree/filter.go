package tree

import (
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// FilterOptions configures text filtering.
type FilterOptions[T Record] struct {
	Fields []string                               // fields to search, nil means all payload fields
	Fuzzy  bool                                   // subsequence matching instead of substring
	Custom func(node *Node[T], text string) bool // replaces per-node matching
}

// FilteringFunction reports whether node or any of its descendants matches
// text. An empty text matches everything.
func FilteringFunction[T Record](node *Node[T], text string, opts FilterOptions[T]) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	stack := []*Node[T]{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if MatchesNode(n, text, opts) {
			return true
		}
		stack = append(stack, n.children...)
	}
	return false
}

// MatchesNode reports whether node itself matches text, ignoring descendants.
func MatchesNode[T Record](node *Node[T], text string, opts FilterOptions[T]) bool {
	if opts.Custom != nil {
		return opts.Custom(node, text)
	}
	haystack := searchStrings(node, opts.Fields)
	if opts.Fuzzy {
		return len(fuzzy.Find(text, haystack)) > 0
	}
	needle := strings.ToLower(text)
	for _, s := range haystack {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func searchStrings[T Record](node *Node[T], fields []string) []string {
	if len(fields) == 0 {
		fields = node.FieldNames()
		if len(fields) == 0 {
			return []string{node.Key}
		}
	}
	out := make([]string, 0, len(fields))
	for _, name := range fields {
		v, ok := node.Field(name)
		if !ok {
			continue
		}
		out = append(out, FormatValue(v))
	}
	return out
}

// FormatValue renders a field value as display text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, " ")
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.DateTime)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
