package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/tree"
)

// Expansion markers drawn between the prefix and the first cell.
const (
	MarkerExpanded  = "▾ "
	MarkerCollapsed = "▸ "
	MarkerEmpty     = "◦ "
	MarkerLeaf      = "  "
)

const columnGap = "  "

// Options controls table rendering.
type Options struct {
	Glyphs   tree.Glyphs
	Styled   bool   // apply lipgloss styles
	Selected string // key of the highlighted row
	MaxWidth int    // 0 means unlimited
}

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BD93F9"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	selectedStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#44475A")).Bold(true)
)

// Marker returns the expansion indicator for a node.
func Marker[T tree.Record](n *tree.Node[T]) string {
	switch {
	case len(n.Children()) > 0 && n.Expanded:
		return MarkerExpanded
	case len(n.Children()) > 0:
		return MarkerCollapsed
	case n.Status() == tree.StatusEmptyChildren:
		return MarkerEmpty
	default:
		return MarkerLeaf
	}
}

// Header renders the column header line.
func Header[T tree.Record](columns []tree.Column[T], opts Options) string {
	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = fit(c.Header, c.Width)
	}
	line := clip(strings.Join(cells, columnGap), opts.MaxWidth)
	if opts.Styled {
		return headerStyle.Render(line)
	}
	return line
}

// Row renders one node as a table line.
func Row[T tree.Record](n *tree.Node[T], columns []tree.Column[T], opts Options) string {
	cells := make([]string, len(columns))
	for i, c := range columns {
		text := Cell(n, c)
		if i == 0 {
			text = tree.RenderPrefix(n.Prefix(), opts.Glyphs) + Marker(n) + text
		}
		cells[i] = fit(text, c.Width)
	}
	line := clip(strings.Join(cells, columnGap), opts.MaxWidth)
	if !opts.Styled {
		return line
	}
	switch {
	case n.Key == opts.Selected:
		return selectedStyle.Render(line)
	case n.IsPlaceholder():
		return placeholderStyle.Render(line)
	}
	return line
}

// Table renders a header followed by one row per node.
func Table[T tree.Record](nodes []*tree.Node[T], columns []tree.Column[T], opts Options) string {
	var sb strings.Builder
	sb.WriteString(Header(columns, opts))
	sb.WriteByte('\n')
	for _, n := range nodes {
		sb.WriteString(Row(n, columns, opts))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// fit pads or truncates s to exactly width cells. Width 0 leaves s as is.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func clip(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return strings.TrimRight(s, " ")
	}
	return strings.TrimRight(runewidth.Truncate(s, width, "…"), " ")
}
