package app

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/keys"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/notify"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui/bell"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui/center"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui/command"
	helpview "github.com/hariomahlawat/ProjectManagement-sub006/internal/ui/help"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBell ViewState = iota
	ViewCenter
	ViewHelp
	ViewCommand
)

// Deps are the collaborators of the root model.
type Deps struct {
	Store     ui.Store
	BellSub   *ui.Subscription
	CenterSub *ui.Subscription
	Transport *TransportFeed
	Config    *model.AppConfig
	Logger    *slog.Logger

	// Clipboard receives navigation targets. Defaults to the system
	// clipboard.
	Clipboard func(string) error
}

// Model is the root Bubble Tea model: it routes messages between the bell
// and center views and renders the header and status bar around them.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	store        ui.Store
	bell         bell.Model
	center       center.Model
	helpView     helpview.Model
	palette      command.Model
	transport    *TransportFeed
	cfg          *model.AppConfig
	logger       *slog.Logger
	clipboard    func(string) error

	ready      bool
	unread     int
	transState notify.TransportState
	status     string
	statusErr  bool
}

// New creates the root model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	if d.Clipboard == nil {
		d.Clipboard = clipboard.WriteAll
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	return Model{
		currentView: ViewBell,
		keys:        k,
		store:       d.Store,
		bell:        bell.New(d.Store, d.BellSub, k, d.Config.Views.BellLimit, 80, 24),
		center:      center.New(d.Store, d.CenterSub, k, d.Config.Views.CenterLimit, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		palette:     command.New(80, 24),
		transport:   d.Transport,
		cfg:         d.Config,
		logger:      d.Logger,
		clipboard:   d.Clipboard,
	}
}

// NewFromRuntime creates the root model over a wired Runtime, registering
// one subscription per view.
func NewFromRuntime(rt *Runtime, logger *slog.Logger) Model {
	return New(Deps{
		Store:     rt.Store,
		BellSub:   rt.Subscribe(),
		CenterSub: rt.Subscribe(),
		Transport: rt.Transport,
		Config:    rt.Config,
		Logger:    logger,
	})
}

// Init waits for the first snapshots and transport change.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.bell.Init(), m.center.Init()}
	if m.transport != nil {
		cmds = append(cmds, m.transport.Wait())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the views.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.bell.SetSize(w, h)
		m.center.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.palette.SetSize(w, h)
		return m, nil

	case ui.SnapshotMsg:
		// Each view ignores snapshots addressed to the other.
		m.unread = msg.Unread
		var bellCmd, centerCmd tea.Cmd
		m.bell, bellCmd = m.bell.Update(msg)
		m.center, centerCmd = m.center.Update(msg)
		return m, tea.Batch(bellCmd, centerCmd)

	case TransportMsg:
		m.transState = msg.State
		return m, m.transport.Wait()

	case ui.NavigateMsg:
		m.navigate(msg)
		return m, nil

	case ui.ActionResultMsg:
		m.status, m.statusErr = msg.StatusText()
		if msg.Err != nil {
			m.logger.Warn("notification action failed", slog.String("op", msg.Op), slog.Any("error", msg.Err))
		}
		var cmd tea.Cmd
		m.center, cmd = m.center.Update(msg)
		return m, cmd

	case ui.RefreshResultMsg:
		if msg.Err != nil {
			m.status, m.statusErr = "Unable to refresh notifications", true
			return m, nil
		}
		m.status, m.statusErr = "Notifications refreshed", false
		return m, nil

	case command.CommandMsg:
		return m.executeCommand(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveView(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// The search box consumes every key until it is closed.
	if m.currentView == ViewCenter && m.center.Capturing() {
		return m.updateActiveView(msg)
	}

	if m.currentView == ViewCommand {
		if key.Matches(msg, m.keys.Back) {
			m.closePalette()
			return m, nil
		}
		return m.updateActiveView(msg)
	}

	m.status, m.statusErr = "", false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil
		}

	case key.Matches(msg, m.keys.SwitchView):
		switch m.currentView {
		case ViewBell:
			m.currentView = ViewCenter
		case ViewCenter:
			m.currentView = ViewBell
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.status = "Refreshing..."
		return m, ui.RefreshCmd(m.store)

	case key.Matches(msg, m.keys.Command):
		if m.currentView != ViewHelp {
			m.previousView = m.currentView
		}
		m.currentView = ViewCommand
		return m, m.palette.Focus()
	}

	return m.updateActiveView(msg)
}

func (m *Model) closePalette() {
	m.palette.Blur()
	m.currentView = m.previousView
}

// executeCommand runs a palette command against the store or the center view.
func (m Model) executeCommand(msg command.CommandMsg) (tea.Model, tea.Cmd) {
	m.closePalette()
	m.status, m.statusErr = "", false

	switch msg.Name {
	case "quit":
		return m, tea.Quit
	case "refresh":
		m.status = "Refreshing..."
		return m, ui.RefreshCmd(m.store)
	case "read-all":
		return m, ui.MarkAllCmd(m.store)
	case "bell":
		m.currentView = ViewBell
	case "center":
		m.currentView = ViewCenter
	case "filter":
		if s, ok := center.ParseStatus(msg.Arg); ok {
			m.center.SetStatus(s)
			m.currentView = ViewCenter
		}
	case "sort":
		if mode, ok := center.ParseSortMode(msg.Arg); ok {
			m.center.SetSort(mode)
			m.currentView = ViewCenter
		}
	case "clear":
		m.center.ClearFilters()
		m.currentView = ViewCenter
	default:
		m.status, m.statusErr = fmt.Sprintf("Unknown command %q", msg.Name), true
	}
	return m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewBell:
		m.bell, cmd = m.bell.Update(msg)
	case ViewCenter:
		m.center, cmd = m.center.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.palette, cmd = m.palette.Update(msg)
	}

	return m, cmd
}

// navigate resolves the route, copies it to the clipboard and reports it.
func (m *Model) navigate(msg ui.NavigateMsg) {
	target := resolveRoute(m.cfg.Server.APIBase, msg.Route)
	m.logger.Info("opening notification", slog.Int64("id", msg.ID), slog.String("route", target))

	if msg.MarkErr != nil {
		m.logger.Warn("unable to mark notification read", slog.Int64("id", msg.ID), slog.Any("error", msg.MarkErr))
	}

	if err := m.clipboard(target); err != nil {
		m.logger.Debug("clipboard unavailable", slog.Any("error", err))
		m.status, m.statusErr = "Open "+target, msg.MarkErr != nil
		return
	}
	m.status, m.statusErr = fmt.Sprintf("Open %s (copied to clipboard)", target), msg.MarkErr != nil
}

// resolveRoute turns a site-relative route into an absolute URL on the
// API server's origin. Absolute routes and unparsable bases pass through.
func resolveRoute(apiBase, route string) string {
	if route == "" || !strings.HasPrefix(route, "/") {
		return route
	}
	base, err := url.Parse(apiBase)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return route
	}
	ref, err := url.Parse(route)
	if err != nil {
		return route
	}
	return base.ResolveReference(ref).String()
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Notifications", m.unread, m.transState.String())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.status, m.statusErr)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBell:
		return m.bell.View()
	case ViewCenter:
		return m.center.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.palette.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter run | tab complete | esc cancel"
	case ViewCenter:
		if m.center.Capturing() {
			return "enter apply | esc clear"
		}
		return "space select | a all | r/u read/unread | m/M mute | / search | s status | p project | o sort | tab bell"
	default:
		return "enter open | x toggle read | R all read | tab center | ctrl+r refresh | : command | ? help | q quit"
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// Status returns the status bar message and whether it is an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// Unread returns the last unread count seen.
func (m Model) Unread() int { return m.unread }

// TransportState returns the last delivery mode seen.
func (m Model) TransportState() notify.TransportState { return m.transState }
