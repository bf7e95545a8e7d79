package bell

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/keys"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/theme"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui"
)

// Model is the compact bell view: the unread badge and the newest few
// notifications. It holds no state of its own beyond what the last
// snapshot delivered.
type Model struct {
	list   list.Model
	store  ui.Store
	sub    *ui.Subscription
	keys   *keys.KeyMap
	limit  int
	unread int
	width  int
	height int
}

// New creates a bell view that renders at most limit rows.
func New(s ui.Store, sub *ui.Subscription, k *keys.KeyMap, limit, width, height int) Model {
	if limit <= 0 {
		limit = model.DefaultBellLimit
	}

	l := list.New([]list.Item{}, Delegate{now: time.Now}, width, height-2)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()

	return Model{
		list:   l,
		store:  s,
		sub:    sub,
		keys:   k,
		limit:  limit,
		width:  width,
		height: height,
	}
}

// Init waits for the first snapshot.
func (m Model) Init() tea.Cmd {
	return m.sub.Wait()
}

// Update handles messages for the bell view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SnapshotMsg:
		if msg.Sub != m.sub {
			return m, nil
		}
		m.unread = msg.Unread
		items := msg.Items
		if len(items) > m.limit {
			items = items[:m.limit]
		}
		listItems := make([]list.Item, len(items))
		for i, n := range items {
			listItems[i] = Item{N: n}
		}
		return m, tea.Batch(m.list.SetItems(listItems), m.sub.Wait())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			if it, ok := m.focused(); ok {
				return m, ui.OpenCmd(m.store, it.N)
			}
			return m, nil
		case key.Matches(msg, m.keys.ToggleRead):
			if it, ok := m.focused(); ok {
				return m, ui.MarkCmd(m.store, []int64{it.N.ID}, !it.N.IsRead)
			}
			return m, nil
		case key.Matches(msg, m.keys.MarkAllRead):
			return m, ui.MarkAllCmd(m.store)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) focused() (Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	return it, ok
}

// Unread returns the badge count from the last snapshot.
func (m Model) Unread() int { return m.unread }

// Len returns the number of rendered rows.
func (m Model) Len() int { return len(m.list.Items()) }

// View renders the badge line and the list.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("Notifications")
	if badge := ui.Badge(m.unread); badge != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", badge)
	}

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = theme.HelpStyle.Padding(1, 2).Render("No notifications")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
