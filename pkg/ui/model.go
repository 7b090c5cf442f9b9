// Package ui implements the interactive asset tree browser.
package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/render"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/selection"
	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/tree"
)

// splitWidth is the terminal width from which the details pane is shown
// beside the table.
const splitWidth = 100

// ReloadMsg asks the model to reload its records. FromWatcher marks
// messages produced by the file watcher.
type ReloadMsg struct {
	FromWatcher bool
}

type reloadedMsg struct {
	assets []model.Asset
	err    error
}

type detailsMsg struct {
	res selection.Result[string]
}

// Config wires a Model to its data sources.
type Config struct {
	Title      string
	Collection *tree.Collection[model.Asset]
	Glyphs     tree.Glyphs
	Tracker    *selection.Tracker[string] // optional details fetcher
	Details    *AssetDetails              // snapshot refreshed on reload
	Reload     func() ([]model.Asset, error)
	Changes    <-chan struct{} // optional watcher signal
	Logger     *log.Logger
}

// Model is the bubbletea model for the tree browser.
type Model struct {
	cfg    Config
	coll   *tree.Collection[model.Asset]
	fields []string
	keys   keyMap
	help   help.Model

	cursor   int
	offset   int
	selected string

	filter    textinput.Model
	filtering bool
	showHelp  bool

	details    viewport.Model
	detailsMD  string
	detailsErr error
	detailsKey string

	width  int
	height int
	status string
	err    error
}

// New creates a Model. The collection must already hold the initial records.
func New(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Title == "" {
		cfg.Title = "hv"
	}

	ti := textinput.New()
	ti.Placeholder = "filter assets..."
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.Width = 40
	ti.SetValue(cfg.Collection.FilterText())

	m := Model{
		cfg:     cfg,
		coll:    cfg.Collection,
		fields:  render.SortableFields(cfg.Collection.Columns()),
		keys:    defaultKeyMap(),
		help:    help.New(),
		filter:  ti,
		details: viewport.New(40, 20),
	}
	m.syncCursor()
	return m
}

// Init starts the first details fetch and the watcher subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchDetails(), m.waitForChange())
}

// Selected returns the key of the highlighted row.
func (m Model) Selected() string {
	return m.selected
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resizeDetails()
		m.ensureVisible()
		return m, nil

	case ReloadMsg:
		var cmds []tea.Cmd
		if msg.FromWatcher {
			cmds = append(cmds, m.waitForChange())
		}
		cmds = append(cmds, m.reload())
		return m, tea.Batch(cmds...)

	case reloadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.cfg.Logger.Warn("reload failed", "err", msg.err)
			return m, nil
		}
		if err := m.coll.Update(msg.assets); err != nil {
			m.err = err
			m.cfg.Logger.Warn("reload rejected", "err", err)
			return m, nil
		}
		m.err = nil
		if m.cfg.Details != nil {
			m.cfg.Details.SetAssets(msg.assets)
		}
		m.status = fmt.Sprintf("reloaded %d assets", len(msg.assets))
		m.syncCursor()
		m.detailsKey = ""
		return m, m.fetchDetails()

	case detailsMsg:
		if msg.res.Key != m.selected {
			return m, nil
		}
		m.detailsKey = msg.res.Key
		m.detailsMD, m.detailsErr = msg.res.Value, msg.res.Err
		m.refreshDetails()
		m.details.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		cmd := m.clearFilter()
		return m, cmd
	case tea.KeyTab:
		m.coll.SetFilterFields(nextFilterField(m.fields, m.coll.FilterFields()))
		m.cursor = 0
		cmd := m.afterMove()
		return m, cmd
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != m.coll.FilterText() {
		m.coll.SetFilter(m.filter.Value())
		m.cursor = 0
		moved := m.afterMove()
		return m, tea.Batch(cmd, moved)
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cfg.Tracker != nil {
			m.cfg.Tracker.Cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		cmd := m.afterMove()
		return m, cmd

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		cmd := m.afterMove()
		return m, cmd

	case key.Matches(msg, m.keys.Toggle):
		if m.selected != "" {
			if err := m.coll.Toggle(m.selected); err != nil {
				m.err = err
			}
			m.syncCursor()
		}
		return m, nil

	case key.Matches(msg, m.keys.ExpandAll):
		m.coll.ExpandAll()
		m.syncCursor()
		return m, nil

	case key.Matches(msg, m.keys.CollapseAll):
		m.coll.CollapseAll()
		cmd := m.afterMove()
		return m, cmd

	case key.Matches(msg, m.keys.NextPage):
		m.turnPage(1)
		cmd := m.afterMove()
		return m, cmd

	case key.Matches(msg, m.keys.PrevPage):
		m.turnPage(-1)
		cmd := m.afterMove()
		return m, cmd

	case key.Matches(msg, m.keys.Sort):
		state := m.coll.Sort()
		state.Field = nextField(m.fields, state.Field)
		m.coll.SetSort(state)
		m.syncCursor()
		return m, nil

	case key.Matches(msg, m.keys.SortDir):
		state := m.coll.Sort()
		state.Descending = !state.Descending
		m.coll.SetSort(state)
		m.syncCursor()
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.SetValue(m.coll.FilterText())
		m.filter.CursorEnd()
		cmd := m.filter.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.ClearFilter):
		if m.coll.FilterText() != "" {
			cmd := m.clearFilter()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.selected == "" {
			return m, nil
		}
		if err := clipboard.WriteAll(m.selected); err != nil {
			m.status = "clipboard unavailable: " + err.Error()
		} else {
			m.status = "copied " + m.selected
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}
	return m, nil
}

// nextFilterField steps from all fields through each single field and back.
func nextFilterField(fields, current []string) []string {
	if len(fields) == 0 {
		return nil
	}
	if len(current) != 1 {
		return []string{fields[0]}
	}
	i := slices.Index(fields, current[0])
	if i < 0 || i+1 >= len(fields) {
		return nil
	}
	return []string{fields[i+1]}
}

func filterScope(fields []string) string {
	if len(fields) == 0 {
		return "all fields"
	}
	return strings.Join(fields, ",")
}

func nextField(fields []string, current string) string {
	if len(fields) == 0 {
		return current
	}
	i := slices.Index(fields, current)
	return fields[(i+1)%len(fields)]
}

// ══════════════════════════════════════════════════════════════════════════════
// CURSOR AND PAGING
// ══════════════════════════════════════════════════════════════════════════════

func (m *Model) items() []*tree.Node[model.Asset] {
	return m.coll.Items().Items
}

// syncCursor re-finds the selected key after the view changed, falling back
// to the nearest row.
func (m *Model) syncCursor() {
	items := m.items()
	if len(items) == 0 {
		m.cursor, m.offset, m.selected = 0, 0, ""
		return
	}
	if m.selected != "" {
		for i, n := range items {
			if n.Key == m.selected {
				m.cursor = i
				m.ensureVisible()
				return
			}
		}
	}
	m.cursor = max(0, min(m.cursor, len(items)-1))
	m.selected = items[m.cursor].Key
	m.ensureVisible()
}

func (m *Model) moveCursor(delta int) {
	items := m.items()
	if len(items) == 0 {
		return
	}
	next := m.cursor + delta
	page := m.coll.Items().Pagination
	switch {
	case next >= len(items) && page.Page+1 < page.Pages:
		m.coll.SetPage(page.Page + 1)
		next = 0
	case next < 0 && page.Page > 0:
		m.coll.SetPage(page.Page - 1)
		next = len(m.items()) - 1
	}
	items = m.items()
	m.cursor = max(0, min(next, len(items)-1))
	m.selected = items[m.cursor].Key
	m.ensureVisible()
}

func (m *Model) turnPage(delta int) {
	page := m.coll.Items().Pagination
	m.coll.SetPage(page.Page + delta)
	m.cursor, m.offset, m.selected = 0, 0, ""
	m.syncCursor()
}

func (m *Model) ensureVisible() {
	h := m.tableHeight()
	if h <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// clearFilter drops the filter text and expands the ancestors of the
// selected row so it stays on screen.
func (m *Model) clearFilter() tea.Cmd {
	m.filter.SetValue("")
	m.coll.SetFilter("")
	if m.selected != "" {
		if err := m.coll.Reveal(m.selected); err != nil {
			m.cfg.Logger.Debug("reveal selection", "key", m.selected, "err", err)
		}
	}
	return m.afterMove()
}

// afterMove syncs the cursor and fetches details if the selection changed.
func (m *Model) afterMove() tea.Cmd {
	m.syncCursor()
	if m.selected == m.detailsKey {
		return nil
	}
	return m.fetchDetails()
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) fetchDetails() tea.Cmd {
	tr := m.cfg.Tracker
	key := m.selected
	if tr == nil || key == "" {
		return nil
	}
	return func() tea.Msg {
		res, ok := tr.Select(context.Background(), key)
		if !ok {
			return nil
		}
		return detailsMsg{res: res}
	}
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.cfg.Changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ReloadMsg{FromWatcher: true}
	}
}

func (m Model) reload() tea.Cmd {
	fn := m.cfg.Reload
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		assets, err := fn()
		return reloadedMsg{assets: assets, err: err}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEW
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) split() bool {
	return m.width >= splitWidth && m.cfg.Tracker != nil
}

func (m Model) tableWidth() int {
	if m.split() {
		return m.width * 3 / 5
	}
	return m.width
}

// tableHeight is the number of rows available for items; 0 means unlimited.
func (m Model) tableHeight() int {
	if m.height == 0 {
		return 0
	}
	chrome := 5 // title, divider, header, status, help
	if m.showHelp {
		chrome += 4
	}
	return max(1, m.height-chrome)
}

func (m *Model) resizeDetails() {
	if !m.split() {
		return
	}
	m.details.Width = m.width - m.tableWidth() - 4
	m.details.Height = max(1, m.height-4)
	m.refreshDetails()
}

func (m *Model) refreshDetails() {
	switch {
	case m.detailsErr != nil:
		m.details.SetContent(errorStyle.Render(m.detailsErr.Error()))
	case m.detailsMD != "":
		m.details.SetContent(m.renderMarkdown(m.detailsMD))
	}
}

func (m Model) renderMarkdown(md string) string {
	width := m.details.Width
	if width <= 0 {
		width = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// View renders the model.
func (m Model) View() string {
	state := m.coll.Items()
	var sb strings.Builder

	title := titleStyle.Render(m.cfg.Title)
	info := fmt.Sprintf("  %d assets", m.coll.Len())
	if state.Pagination.PageSize > 0 {
		info += fmt.Sprintf(" · page %d/%d", state.Pagination.Page+1, max(1, state.Pagination.Pages))
	}
	sb.WriteString(title + mutedStyle.Render(info) + "  " + RenderSortIndicator(state.Sort.Field, state.Sort.Descending))
	if state.Filter.Text != "" {
		sb.WriteString("  " + filterStyle.Render(fmt.Sprintf("filter %q in %s (%d)", state.Filter.Text, filterScope(state.Filter.Fields), state.Filter.Matches)))
	}
	sb.WriteByte('\n')
	sb.WriteString(RenderDivider(m.width))
	sb.WriteByte('\n')

	table := m.renderTable(state.Items)
	if m.split() {
		pane := PanelStyle.Width(m.details.Width).Render(m.details.View())
		table = lipgloss.JoinHorizontal(lipgloss.Top, table, " ", pane)
	}
	sb.WriteString(table)
	sb.WriteByte('\n')

	switch {
	case m.filtering:
		sb.WriteString(m.filter.View() + mutedStyle.Render("  tab: "+filterScope(state.Filter.Fields)))
	case m.err != nil:
		sb.WriteString(errorStyle.Render(m.err.Error()))
	case m.status != "":
		sb.WriteString(statusStyle.Render(m.status))
	}
	sb.WriteByte('\n')
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m Model) renderTable(items []*tree.Node[model.Asset]) string {
	opts := render.Options{
		Glyphs:   m.cfg.Glyphs,
		Styled:   true,
		Selected: m.selected,
		MaxWidth: m.tableWidth(),
	}
	cols := m.coll.Columns()

	lines := []string{render.Header(cols, opts)}
	if len(items) == 0 {
		lines = append(lines, mutedStyle.Render("  no assets match"))
		return strings.Join(lines, "\n")
	}
	end := len(items)
	if h := m.tableHeight(); h > 0 {
		end = min(end, m.offset+h)
	}
	for _, n := range items[m.offset:end] {
		lines = append(lines, render.Row(n, cols, opts))
	}
	return strings.Join(lines, "\n")
}
