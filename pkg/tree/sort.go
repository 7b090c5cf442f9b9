package tree

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortState selects the sort field and direction.
type SortState struct {
	Field      string `yaml:"field"`
	Descending bool   `yaml:"descending"`
}

// Comparator orders two nodes; negative means a sorts first.
type Comparator[T Record] func(a, b *Node[T]) int

// Column describes one table column. Comparator, when set, replaces the
// default field comparison for this column.
type Column[T Record] struct {
	ID           string
	Header       string
	SortingField string // defaults to ID
	Width        int
	Comparator   Comparator[T]
	Cell         func(*Node[T]) string
}

func (c Column[T]) sortingField() string {
	if c.SortingField != "" {
		return c.SortingField
	}
	return c.ID
}

// SortTree sorts every sibling group independently, roots included, using a
// stable sort. Nodes never change parents. The roots slice is sorted in place
// and returned.
func SortTree[T Record](roots []*Node[T], state SortState, columns []Column[T]) []*Node[T] {
	if state.Field == "" {
		return roots
	}
	compare := ComparatorFor(state, columns)

	slices.SortStableFunc(roots, compare)
	stack := slices.Clone(roots)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(n.children) == 0 {
			continue
		}
		slices.SortStableFunc(n.children, compare)
		stack = append(stack, n.children...)
	}
	return roots
}

// ComparatorFor resolves the comparator for state, honoring a matching
// column's custom comparator and the sort direction.
func ComparatorFor[T Record](state SortState, columns []Column[T]) Comparator[T] {
	var compare Comparator[T]
	for _, col := range columns {
		if col.Comparator != nil && (col.ID == state.Field || col.sortingField() == state.Field) {
			compare = col.Comparator
			break
		}
	}
	if compare == nil {
		field := state.Field
		for _, col := range columns {
			if col.ID == state.Field {
				field = col.sortingField()
				break
			}
		}
		compare = FieldComparator[T](field)
	}
	if state.Descending {
		asc := compare
		compare = func(a, b *Node[T]) int { return -asc(a, b) }
	}
	return compare
}

// FieldComparator compares two nodes by a payload field using CompareValues.
func FieldComparator[T Record](field string) Comparator[T] {
	return func(a, b *Node[T]) int {
		av, _ := a.Field(field)
		bv, _ := b.Field(field)
		return CompareValues(av, bv)
	}
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und)
)

func compareStrings(a, b string) int {
	collatorMu.Lock()
	c := collator.CompareString(a, b)
	collatorMu.Unlock()
	if c == 0 {
		return strings.Compare(a, b)
	}
	return c
}

// CompareValues is the default field ordering.
//
// Absent values (nil) read as the empty string when compared with a string,
// and sort before any other defined value. Two strings use locale-aware
// collation. Numbers of any Go kind compare numerically, bools put false
// first and times compare chronologically. Other mixes fall back to their
// formatted strings.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if bs, ok := b.(string); ok {
			return compareStrings("", bs)
		}
		return -1
	case b == nil:
		if as, ok := a.(string); ok {
			return compareStrings(as, "")
		}
		return 1
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return compareStrings(as, bs)
		}
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return compareStrings(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
