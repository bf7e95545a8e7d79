package setup

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/theme"
)

const validateTimeout = 15 * time.Second

// ValidateFunc checks that cfg and token reach a working server.
type ValidateFunc func(ctx context.Context, cfg *model.AppConfig, token string) error

// SaveFunc persists the configuration and the token.
type SaveFunc func(cfg *model.AppConfig, token string) error

// DoneMsg reports that setup finished and the configuration was saved.
type DoneMsg struct {
	Config *model.AppConfig
	Token  string
}

// AbortedMsg reports that the user left the form.
type AbortedMsg struct{}

type savedMsg struct {
	err error
}

// values is shared by every copy of Model so the form bindings stay valid.
type values struct {
	apiBase   string
	unreadURL string
	hubURL    string
	centerURL string
	token     string
}

// Model is the first-run configuration form.
type Model struct {
	cfg      *model.AppConfig
	vals     *values
	form     *huh.Form
	validate ValidateFunc
	save     SaveFunc

	saving  bool
	err     error
	spinner spinner.Model

	width, height int
}

// New creates a setup form prefilled from cfg. validate may be nil.
func New(cfg *model.AppConfig, validate ValidateFunc, save SaveFunc, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		cfg: cfg,
		vals: &values{
			apiBase:   cfg.Server.APIBase,
			unreadURL: cfg.Server.UnreadURLOverride,
			hubURL:    cfg.Server.HubURL,
			centerURL: cfg.Server.CenterURLOverride,
		},
		validate: validate,
		save:     save,
		spinner:  sp,
		width:    width,
		height:   height,
	}
	m.form = m.buildForm()
	return m
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Notifications REST root").
				Placeholder("https://pm.example.com/api/notifications").
				Value(&m.vals.apiBase).
				Validate(validateURL),
			huh.NewInput().
				Title("Unread count URL").
				Description("Optional; defaults to {api base}/unread-count").
				Value(&m.vals.unreadURL).
				Validate(optional(validateURL)),
			huh.NewInput().
				Title("Hub URL").
				Description("Optional real-time endpoint; leave empty to poll").
				Placeholder("https://pm.example.com/hubs/notifications").
				Value(&m.vals.hubURL).
				Validate(optional(validateURL)),
			huh.NewInput().
				Title("Notification center URL").
				Description("Opened for notifications without a route").
				Placeholder("/notifications").
				Value(&m.vals.centerURL),
			huh.NewInput().
				Title("API token").
				Description("Stored in the system keyring").
				EchoMode(huh.EchoModePassword).
				Value(&m.vals.token).
				Validate(validateRequired("Token")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form, then validation and saving.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		cfg, token := m.cfg, m.vals.token
		return m, func() tea.Msg { return DoneMsg{Config: cfg, Token: token} }

	case spinner.TickMsg:
		if m.saving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.saving {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.apply()
		m.saving = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.validateAndSave())
	case huh.StateAborted:
		return m, func() tea.Msg { return AbortedMsg{} }
	}

	return m, cmd
}

// apply copies the form values into the configuration.
func (m Model) apply() {
	m.cfg.Server.APIBase = strings.TrimRight(strings.TrimSpace(m.vals.apiBase), "/")
	m.cfg.Server.UnreadURLOverride = strings.TrimSpace(m.vals.unreadURL)
	m.cfg.Server.HubURL = strings.TrimSpace(m.vals.hubURL)
	m.cfg.Server.CenterURLOverride = strings.TrimSpace(m.vals.centerURL)
	m.cfg.Server.Authenticated = true
}

func (m Model) validateAndSave() tea.Cmd {
	cfg, token := m.cfg, strings.TrimSpace(m.vals.token)
	validate, save := m.validate, m.save
	return func() tea.Msg {
		if validate != nil {
			ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
			defer cancel()
			if err := validate(ctx, cfg, token); err != nil {
				return savedMsg{err: fmt.Errorf("connecting to server: %w", err)}
			}
		}
		if err := save(cfg, token); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{}
	}
}

// Saving reports whether validation or saving is in flight.
func (m Model) Saving() bool { return m.saving }

// Err returns the last validation or save failure.
func (m Model) Err() error { return m.err }

// View renders the form.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Connect to the project server")

	body := m.form.View()
	if m.saving {
		body = m.spinner.View() + " Checking connection..."
	}

	parts := []string{title}
	if m.err != nil {
		parts = append(parts, theme.ErrorStyle.Render(m.err.Error()))
	}
	parts = append(parts, body)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) formWidth() int {
	return max(min(m.width-8, 80), 30)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}

func optional(v func(string) error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return v(s)
	}
}
