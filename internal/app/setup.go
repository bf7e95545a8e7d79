package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/credential"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/source/web"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui/setup"
)

// ErrSetupAborted is returned when the user leaves first-run setup.
var ErrSetupAborted = errors.New("setup aborted")

// setupModel hosts the setup form as a standalone program.
type setupModel struct {
	form   setup.Model
	result *setup.DoneMsg
}

func (m setupModel) Init() tea.Cmd { return m.form.Init() }

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case setup.DoneMsg:
		m.result = &msg
		return m, tea.Quit
	case setup.AbortedMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m setupModel) View() string { return m.form.View() }

// RunSetup shows the first-run form. On success the configuration is
// written to path, the token is stored in the keyring, and both are
// returned.
func RunSetup(cfg *model.AppConfig, path string, logger *slog.Logger) (*model.AppConfig, string, error) {
	save := func(c *model.AppConfig, token string) error {
		if err := credential.Set(credential.TokenKey, token); err != nil {
			return fmt.Errorf("saving API token: %w", err)
		}
		if err := model.SaveConfig(path, c); err != nil {
			return err
		}
		logger.Info("configuration saved", slog.String("path", path))
		return nil
	}

	form := setup.New(cfg, probeServer, save, 80, 24)
	final, err := tea.NewProgram(setupModel{form: form}, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, "", fmt.Errorf("running setup: %w", err)
	}

	res := final.(setupModel).result
	if res == nil {
		return nil, "", ErrSetupAborted
	}
	return res.Config, res.Token, nil
}

// probeServer checks the unread-count endpoint with the given token.
func probeServer(ctx context.Context, cfg *model.AppConfig, token string) error {
	adapter := web.NewAdapter(web.NewClient(token), cfg.Server.APIBase, cfg.UnreadURL())
	_, err := adapter.UnreadCount(ctx)
	return err
}
