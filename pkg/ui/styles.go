package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Dracula-inspired
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBg          = lipgloss.Color("#282A36")
	ColorBgSubtle    = lipgloss.Color("#363949")
	ColorBgHighlight = lipgloss.Color("#44475A")
	ColorText        = lipgloss.Color("#F8F8F2")
	ColorMuted       = lipgloss.Color("#6272A4")

	ColorPrimary = lipgloss.Color("#BD93F9")
	ColorInfo    = lipgloss.Color("#8BE9FD")
	ColorSuccess = lipgloss.Color("#50FA7B")
	ColorWarning = lipgloss.Color("#FFB86C")
	ColorDanger  = lipgloss.Color("#FF5555")

	// Priority colors
	ColorPrioCritical = lipgloss.Color("#FF5555")
	ColorPrioHigh     = lipgloss.Color("#FFB86C")
	ColorPrioMedium   = lipgloss.Color("#F1FA8C")
	ColorPrioLow      = lipgloss.Color("#50FA7B")
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES - For split view layouts
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	statusStyle = lipgloss.NewStyle().Foreground(ColorInfo)
	errorStyle  = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
	filterStyle = lipgloss.NewStyle().Foreground(ColorWarning)
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGES
// ══════════════════════════════════════════════════════════════════════════════

// RenderPriorityBadge returns a styled priority badge.
// Lower values are more urgent; negative means unset.
func RenderPriorityBadge(priority int) string {
	var fg lipgloss.Color
	switch {
	case priority < 0:
		return mutedStyle.Render("P-")
	case priority == 0:
		fg = ColorPrioCritical
	case priority == 1:
		fg = ColorPrioHigh
	case priority == 2:
		fg = ColorPrioMedium
	default:
		fg = ColorPrioLow
	}
	return lipgloss.NewStyle().
		Foreground(fg).
		Bold(true).
		Render("P" + strconv.Itoa(priority))
}

// RenderSortIndicator shows the active sort field and direction.
func RenderSortIndicator(field string, descending bool) string {
	if field == "" {
		return mutedStyle.Render("unsorted")
	}
	arrow := "↑"
	if descending {
		arrow = "↓"
	}
	return statusStyle.Render(field + " " + arrow)
}

// ══════════════════════════════════════════════════════════════════════════════
// DIVIDERS AND SEPARATORS
// ══════════════════════════════════════════════════════════════════════════════

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
