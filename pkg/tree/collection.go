package tree

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// CollectionConfig configures a Collection.
type CollectionConfig[T Record] struct {
	Columns         []Column[T]
	Sort            SortState
	Filter          FilterOptions[T]
	PageSize        int // 0 disables paging
	DefaultExpanded bool
	Merge           MergeFunc[T]
	Logger          *log.Logger
}

// FilterProps describes the active text filter.
type FilterProps struct {
	Text    string
	Fields  []string // searched fields, nil means all
	Matches int      // rows passing the filter before paging
}

// PaginationProps describes the current page.
type PaginationProps struct {
	Page     int // zero-based
	Pages    int
	PageSize int
}

// CollectionState is the rendered view of a collection.
type CollectionState[T Record] struct {
	Items      []*Node[T]
	Filter     FilterProps
	Pagination PaginationProps
	Sort       SortState
}

// Collection owns an index and the derived sorted, prefixed, flattened view.
// It is not safe for concurrent use.
type Collection[T Record] struct {
	cfg    CollectionConfig[T]
	idx    *Index[T]
	roots  []*Node[T]
	flat   []*Node[T]
	sort   SortState
	filter string
	page   int
}

// NewCollection creates an empty collection.
func NewCollection[T Record](cfg CollectionConfig[T]) *Collection[T] {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Collection[T]{
		cfg: cfg,
		idx: NewIndex(IndexOptions[T]{
			DefaultExpanded: cfg.DefaultExpanded,
			Merge:           cfg.Merge,
			Logger:          cfg.Logger,
		}),
		sort: cfg.Sort,
	}
}

// Update reconciles the collection with a new record set. On error the
// previous view is kept.
func (c *Collection[T]) Update(records []T) error {
	roots, err := BuildTreeNodes(records, c.idx)
	if err != nil {
		return err
	}
	c.roots = roots
	c.refresh()
	return nil
}

func (c *Collection[T]) refresh() {
	c.roots = SortTree(c.roots, c.sort, c.cfg.Columns)
	BuildTreePrefix(c.roots)
	c.flat = FlatTree(c.roots)
	c.clampPage()
}

// Toggle flips the expansion state of key.
func (c *Collection[T]) Toggle(key string) error {
	node, ok := c.idx.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	node.Expanded = !node.Expanded
	ExpandOrCollapseChildren(node)
	c.clampPage()
	return nil
}

// SetExpanded sets the expansion state of key.
func (c *Collection[T]) SetExpanded(key string, expanded bool) error {
	node, ok := c.idx.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if node.Expanded == expanded {
		return nil
	}
	node.Expanded = expanded
	ExpandOrCollapseChildren(node)
	c.clampPage()
	return nil
}

// Reveal expands every ancestor of key.
func (c *Collection[T]) Reveal(key string) error {
	node, ok := c.idx.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	ExpandAncestors(node)
	c.clampPage()
	return nil
}

// ExpandAll expands every node.
func (c *Collection[T]) ExpandAll() {
	SetExpandedAll(c.roots, true)
}

// CollapseAll collapses every node.
func (c *Collection[T]) CollapseAll() {
	SetExpandedAll(c.roots, false)
	c.clampPage()
}

// SetSort re-sorts the tree.
func (c *Collection[T]) SetSort(state SortState) {
	c.sort = state
	c.refresh()
}

// Sort returns the active sort state.
func (c *Collection[T]) Sort() SortState {
	return c.sort
}

// SetFilter sets the filter text and returns to the first page.
func (c *Collection[T]) SetFilter(text string) {
	c.filter = text
	c.page = 0
}

// FilterText returns the active filter text.
func (c *Collection[T]) FilterText() string {
	return c.filter
}

// SetFilterFields restricts filtering to fields; nil searches every field.
func (c *Collection[T]) SetFilterFields(fields []string) {
	c.cfg.Filter.Fields = fields
	c.page = 0
}

// FilterFields returns the fields the filter searches, nil meaning all.
func (c *Collection[T]) FilterFields() []string {
	return c.cfg.Filter.Fields
}

// SetPage selects a zero-based page, clamped to the available range.
func (c *Collection[T]) SetPage(page int) {
	c.page = page
	c.clampPage()
}

// Reset drops all nodes and view state except the sort.
func (c *Collection[T]) Reset() {
	c.idx.Reset()
	c.roots = nil
	c.flat = nil
	c.filter = ""
	c.page = 0
}

// Node returns the live node for key.
func (c *Collection[T]) Node(key string) (*Node[T], bool) {
	return c.idx.Get(key)
}

// Len returns the number of live nodes.
func (c *Collection[T]) Len() int {
	return c.idx.Len()
}

// Roots returns the sorted roots.
func (c *Collection[T]) Roots() []*Node[T] {
	return c.roots
}

// Nodes returns every node in display order, hidden ones included.
func (c *Collection[T]) Nodes() []*Node[T] {
	return c.flat
}

// Columns returns the configured columns.
func (c *Collection[T]) Columns() []Column[T] {
	return c.cfg.Columns
}

// Items returns the rows to render: visible nodes, or with an active filter,
// nodes that match themselves or through a descendant regardless of expansion.
func (c *Collection[T]) Items() CollectionState[T] {
	rows := c.rows()
	state := CollectionState[T]{
		Filter: FilterProps{Text: c.filter, Fields: c.cfg.Filter.Fields, Matches: len(rows)},
		Sort:   c.sort,
		Pagination: PaginationProps{
			Page:     c.page,
			Pages:    pageCount(len(rows), c.cfg.PageSize),
			PageSize: c.cfg.PageSize,
		},
	}
	if c.cfg.PageSize <= 0 {
		state.Items = rows
		return state
	}
	start := min(c.page*c.cfg.PageSize, len(rows))
	end := min(start+c.cfg.PageSize, len(rows))
	state.Items = rows[start:end]
	return state
}

func (c *Collection[T]) rows() []*Node[T] {
	if strings.TrimSpace(c.filter) == "" {
		rows := make([]*Node[T], 0, len(c.flat))
		for _, n := range c.flat {
			if n.Visible {
				rows = append(rows, n)
			}
		}
		return rows
	}

	// Pre-order reversed visits children before parents, so subtree matches
	// accumulate bottom-up in one pass.
	matched := make(map[*Node[T]]bool, len(c.flat))
	for i := len(c.flat) - 1; i >= 0; i-- {
		n := c.flat[i]
		if MatchesNode(n, c.filter, c.cfg.Filter) {
			matched[n] = true
		}
		if matched[n] && n.parent != nil {
			matched[n.parent] = true
		}
	}
	rows := make([]*Node[T], 0, len(matched))
	for _, n := range c.flat {
		if matched[n] {
			rows = append(rows, n)
		}
	}
	return rows
}

func (c *Collection[T]) clampPage() {
	if c.cfg.PageSize <= 0 {
		c.page = 0
		return
	}
	pages := pageCount(len(c.rows()), c.cfg.PageSize)
	c.page = max(0, min(c.page, pages-1))
}

func pageCount(n, size int) int {
	if size <= 0 || n == 0 {
		return 1
	}
	return (n + size - 1) / size
}
