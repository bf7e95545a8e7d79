package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/app"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

func newUnreadCommand(d deps, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Print the unread notification count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, d, *cfgFile, func(ctx context.Context, rt *app.Runtime, out io.Writer) error {
				if err := rt.Store.Refresh(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, rt.Store.UnreadCount())
				return nil
			})
		},
	}
}

func newListCommand(d deps, cfgFile *string) *cobra.Command {
	var (
		limit      int
		unreadOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print recent notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, d, *cfgFile, func(ctx context.Context, rt *app.Runtime, out io.Writer) error {
				if err := rt.Store.Refresh(ctx); err != nil {
					return err
				}
				items, unread := rt.Store.Snapshot()
				if unreadOnly {
					items = unreadItems(items)
				}
				if limit > 0 && len(items) > limit {
					items = items[:limit]
				}
				fmt.Fprintln(out, renderList(items))
				fmt.Fprintf(out, "%d shown, %d unread\n", len(items), unread)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of notifications to print")
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only print unread notifications")
	return cmd
}

func newMarkCommand(d deps, cfgFile *string, read bool) *cobra.Command {
	use, short, verb := "mark-unread <id>...", "Mark notifications unread", "unread"
	if read {
		use, short, verb = "read <id>...", "Mark notifications read", "read"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withRuntime(cmd, d, *cfgFile, func(ctx context.Context, rt *app.Runtime, out io.Writer) error {
				mark := rt.Store.MarkUnread
				if read {
					mark = rt.Store.MarkRead
				}
				count, err := mark(ctx, ids)
				fmt.Fprintf(out, "%d marked %s\n", count, verb)
				return err
			})
		},
	}
}

func newReadAllCommand(d deps, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every unread notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, d, *cfgFile, func(ctx context.Context, rt *app.Runtime, out io.Writer) error {
				if err := rt.Store.Refresh(ctx); err != nil {
					return err
				}
				count, err := rt.Store.MarkAllRead(ctx)
				fmt.Fprintf(out, "%d marked read\n", count)
				return err
			})
		},
	}
}

func newMuteCommand(d deps, cfgFile *string, muted bool) *cobra.Command {
	use, short, done := "unmute <projectId>", "Unmute a project's notifications", "unmuted"
	if muted {
		use, short, done = "mute <projectId>", "Mute a project's notifications", "muted"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withRuntime(cmd, d, *cfgFile, func(ctx context.Context, rt *app.Runtime, out io.Writer) error {
				if err := rt.Store.MuteProject(ctx, ids[0], muted); err != nil {
					return err
				}
				fmt.Fprintf(out, "project %d %s\n", ids[0], done)
				return nil
			})
		},
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := cast.ToInt64E(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func unreadItems(items []model.Notification) []model.Notification {
	var out []model.Notification
	for _, n := range items {
		if !n.IsRead {
			out = append(out, n)
		}
	}
	return out
}

func renderList(items []model.Notification) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "", "CREATED", "PROJECT", "TITLE")

	for _, n := range items {
		state := " "
		if !n.IsRead {
			state = "●"
		}
		project := n.ProjectName
		if n.IsProjectMuted {
			project += " (muted)"
		}
		t.Row(
			cast.ToString(n.ID),
			state,
			n.CreatedAt.Local().Format("2006-01-02 15:04"),
			project,
			n.Title,
		)
	}
	return t.Render()
}
