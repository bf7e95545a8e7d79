package center

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/keys"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/theme"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui"
)

// Model is the full notification-center table. Rows are derived from the
// last snapshot each time the snapshot, the filters or the sort change.
type Model struct {
	table  table.Model
	store  ui.Store
	sub    *ui.Subscription
	keys   *keys.KeyMap
	limit  int
	width  int
	height int

	items  []model.Notification
	rows   []model.Notification
	unread int

	filter   Filter
	sort     SortMode
	selected map[int64]bool

	searching bool
	search    textinput.Model
}

// New creates a center view showing at most limit records.
func New(s ui.Store, sub *ui.Subscription, k *keys.KeyMap, limit, width, height int) Model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(max(height-4, 1)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.ColorWhite).
		Background(theme.ColorBlue).
		Bold(false)
	t.SetStyles(styles)

	si := textinput.New()
	si.Placeholder = "search notifications..."
	si.Prompt = "/ "
	si.Width = max(width-4, 10)

	m := Model{
		table:    t,
		store:    s,
		sub:      sub,
		keys:     k,
		limit:    limit,
		width:    width,
		height:   height,
		selected: make(map[int64]bool),
		search:   si,
	}
	m.table.SetColumns(m.columns())
	return m
}

// Init waits for the first snapshot.
func (m Model) Init() tea.Cmd {
	return m.sub.Wait()
}

// Update handles messages for the center view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SnapshotMsg:
		if msg.Sub != m.sub {
			return m, nil
		}
		m.items = msg.Items
		if m.limit > 0 && len(m.items) > m.limit {
			m.items = m.items[:m.limit]
		}
		m.unread = msg.Unread
		m.pruneSelection()
		m.rebuild()
		return m, m.sub.Wait()

	case ui.ActionResultMsg:
		if msg.Err == nil {
			clear(m.selected)
			m.rebuild()
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleSearchKeys filters live as the query is typed.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.Reset()
		m.filter.Query = ""
		m.rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Query = m.search.Value()
	m.rebuild()
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.filter.Query)
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.StatusFilter):
		m.filter.Status = m.filter.Status.Next()
		m.rebuild()
		return m, nil

	case key.Matches(msg, m.keys.ProjectFilter):
		m.filter.Project = NextProject(Projects(m.items), m.filter.Project)
		m.rebuild()
		return m, nil

	case key.Matches(msg, m.keys.ClearFilters):
		m.ClearFilters()
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		m.SetSort(m.sort.Next())
		return m, nil

	case key.Matches(msg, m.keys.ToggleSelect):
		if n, ok := m.Focused(); ok {
			if m.selected[n.ID] {
				delete(m.selected, n.ID)
			} else {
				m.selected[n.ID] = true
			}
			m.rebuild()
		}
		return m, nil

	case key.Matches(msg, m.keys.SelectAll):
		m.toggleSelectAll()
		m.rebuild()
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if n, ok := m.Focused(); ok {
			return m, ui.OpenCmd(m.store, n)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleRead):
		if n, ok := m.Focused(); ok {
			return m, ui.MarkCmd(m.store, []int64{n.ID}, !n.IsRead)
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		return m, m.markTargets(true)

	case key.Matches(msg, m.keys.MarkUnread):
		return m, m.markTargets(false)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, ui.MarkAllCmd(m.store)

	case key.Matches(msg, m.keys.Mute):
		return m, m.muteTargets(true)

	case key.Matches(msg, m.keys.Unmute):
		return m, m.muteTargets(false)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// toggleSelectAll selects every visible row, or clears them when all are
// already selected.
func (m *Model) toggleSelectAll() {
	all := len(m.rows) > 0
	for _, n := range m.rows {
		if !m.selected[n.ID] {
			all = false
			break
		}
	}
	for _, n := range m.rows {
		if all {
			delete(m.selected, n.ID)
		} else {
			m.selected[n.ID] = true
		}
	}
}

// Targets returns the records a bulk action applies to: the selection
// when there is one, otherwise the focused row.
func (m Model) Targets() []model.Notification {
	if len(m.selected) > 0 {
		var out []model.Notification
		for _, n := range m.items {
			if m.selected[n.ID] {
				out = append(out, n)
			}
		}
		return out
	}
	if n, ok := m.Focused(); ok {
		return []model.Notification{n}
	}
	return nil
}

func (m Model) markTargets(read bool) tea.Cmd {
	targets := m.Targets()
	if len(targets) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(targets))
	for _, n := range targets {
		ids = append(ids, n.ID)
	}
	return ui.MarkCmd(m.store, ids, read)
}

func (m Model) muteTargets(muted bool) tea.Cmd {
	pids := ProjectIDs(m.Targets())
	if len(pids) == 0 {
		return nil
	}
	return ui.MuteCmd(m.store, pids, muted)
}

// pruneSelection drops selected ids no longer in the snapshot.
func (m *Model) pruneSelection() {
	present := make(map[int64]bool, len(m.items))
	for _, n := range m.items {
		present[n.ID] = true
	}
	for id := range m.selected {
		if !present[id] {
			delete(m.selected, id)
		}
	}
}

// rebuild re-derives the visible rows from the snapshot.
func (m *Model) rebuild() {
	m.rows = Apply(m.items, m.filter, m.sort)

	rows := make([]table.Row, 0, len(m.rows))
	for _, n := range m.rows {
		sel := " "
		if m.selected[n.ID] {
			sel = "✓"
		}
		state := " "
		if !n.IsRead {
			state = "●"
		}
		project := n.ProjectName
		if n.IsProjectMuted {
			project += " (muted)"
		}
		rows = append(rows, table.Row{
			sel,
			state,
			n.Title,
			project,
			n.Module,
			n.CreatedAt.Local().Format("Jan 02 15:04"),
		})
	}
	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) columns() []table.Column {
	fixed := 3 + 2 + 18 + 12 + 13
	titleWidth := max(m.width-fixed-12, 20)
	return []table.Column{
		{Title: " ", Width: 3},
		{Title: " ", Width: 2},
		{Title: "Title", Width: titleWidth},
		{Title: "Project", Width: 18},
		{Title: "Module", Width: 12},
		{Title: "Created", Width: 13},
	}
}

// Focused returns the record under the cursor.
func (m Model) Focused() (model.Notification, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return model.Notification{}, false
	}
	return m.rows[c], true
}

// Rows returns the visible records in display order.
func (m Model) Rows() []model.Notification { return m.rows }

// Selected returns the number of selected records.
func (m Model) Selected() int { return len(m.selected) }

// Filter returns the active filter.
func (m Model) Filter() Filter { return m.filter }

// Sort returns the active sort mode.
func (m Model) Sort() SortMode { return m.sort }

// SetStatus narrows the table to one read state.
func (m *Model) SetStatus(s Status) {
	m.filter.Status = s
	m.rebuild()
}

// SetSort changes the table order.
func (m *Model) SetSort(mode SortMode) {
	m.sort = mode
	m.rebuild()
}

// ClearFilters drops every filter, including the search query.
func (m *Model) ClearFilters() {
	m.filter = Filter{}
	m.search.Reset()
	m.rebuild()
}

// Capturing reports whether the view is consuming raw key input.
func (m Model) Capturing() bool { return m.searching }

// View renders the filter line, the table and the summary line.
func (m Model) View() string {
	header := theme.HeaderStyle.Render("Notification center")
	if badge := ui.Badge(m.unread); badge != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", badge)
	}

	filterLine := theme.HelpStyle.Render(m.describeFilter())
	if m.searching {
		filterLine = m.search.View()
	}

	body := m.table.View()
	if len(m.rows) == 0 {
		msg := "No notifications"
		if !m.filter.IsZero() {
			msg = "No notifications match the current filters"
		}
		body = theme.HelpStyle.Padding(1, 2).Render(msg)
	}

	summary := fmt.Sprintf("%d of %d shown", len(m.rows), len(m.items))
	if n := len(m.selected); n > 0 {
		summary += fmt.Sprintf(" · %d selected", n)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		filterLine,
		body,
		theme.HelpStyle.Render(summary),
	)
}

func (m Model) describeFilter() string {
	parts := []string{
		"status: " + m.filter.Status.String(),
		"sort: " + m.sort.String(),
	}
	if m.filter.Project != nil {
		name := fmt.Sprintf("#%d", *m.filter.Project)
		for _, p := range Projects(m.items) {
			if p.ID == *m.filter.Project && p.Name != "" {
				name = p.Name
			}
		}
		parts = append(parts, "project: "+name)
	}
	if q := strings.TrimSpace(m.filter.Query); q != "" {
		parts = append(parts, fmt.Sprintf("search: %q", q))
	}
	return strings.Join(parts, "  ")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = max(width-4, 10)
	m.table.SetColumns(m.columns())
	m.table.SetWidth(width)
	m.table.SetHeight(max(height-4, 1))
}
