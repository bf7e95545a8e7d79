package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/app"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/credential"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/theme"
)

// deps are the seams the commands run through.
type deps struct {
	loadConfig func(path string) (*model.AppConfig, error)
	token      func() (string, error)
	build      func(ctx context.Context, cfg *model.AppConfig, token string, logger *slog.Logger) (*app.Runtime, error)
}

func defaultDeps() deps {
	return deps{
		loadConfig: model.LoadConfig,
		token:      credential.Token,
		build: func(ctx context.Context, cfg *model.AppConfig, token string, logger *slog.Logger) (*app.Runtime, error) {
			return app.Build(ctx, cfg, token, logger, app.BuildOptions{})
		},
	}
}

func newRootCommand(d deps) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "notify-center",
		Short: "Terminal client for project-management notifications",
		Long: `notify-center keeps a live view of your project-management notifications.

Without a subcommand it opens the interactive bell and notification-center
views. Subcommands run single operations and exit.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), d, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", model.DefaultConfigPath(), "config file path")

	root.AddCommand(
		newUnreadCommand(d, &cfgFile),
		newListCommand(d, &cfgFile),
		newMarkCommand(d, &cfgFile, true),
		newMarkCommand(d, &cfgFile, false),
		newReadAllCommand(d, &cfgFile),
		newMuteCommand(d, &cfgFile, true),
		newMuteCommand(d, &cfgFile, false),
	)

	return root
}

// runTUI opens the interactive client, running first-run setup when the
// server is not configured yet.
func runTUI(ctx context.Context, d deps, cfgFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := d.loadConfig(cfgFile)
	if err != nil {
		return err
	}

	logger, closer := app.NewFileLogger(cfg.Log)
	defer closer.Close()

	theme.Apply(cfg.Display.Theme)

	token, err := d.token()
	if err != nil {
		logger.Warn("unable to read API token", slog.Any("error", err))
	}

	if !cfg.IsConfigured() {
		cfg, token, err = app.RunSetup(cfg, cfgFile, logger)
		if errors.Is(err, app.ErrSetupAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	rt, err := d.build(ctx, cfg, token, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go rt.Store.Start(ctx)

	logger.Info("starting notification center",
		slog.String("api_base", cfg.Server.APIBase),
		slog.Bool("realtime", cfg.Server.HubURL != ""),
	)

	p := tea.NewProgram(app.NewFromRuntime(rt, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running notification center: %w", err)
	}
	return nil
}

// withRuntime loads the config, wires a Runtime logging to stderr, runs fn
// and tears the runtime down.
func withRuntime(cmd *cobra.Command, d deps, cfgFile string, fn func(ctx context.Context, rt *app.Runtime, out io.Writer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := d.loadConfig(cfgFile)
	if err != nil {
		return err
	}
	if !cfg.IsConfigured() {
		return fmt.Errorf("no server configured in %s; run notify-center to set one up", cfgFile)
	}

	logger := app.NewLogger(cfg.Log, cmd.ErrOrStderr())

	token, err := d.token()
	if err != nil {
		return fmt.Errorf("reading API token: %w", err)
	}

	rt, err := d.build(ctx, cfg, token, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	return fn(ctx, rt, cmd.OutOrStdout())
}
