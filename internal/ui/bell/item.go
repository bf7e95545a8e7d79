package bell

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/theme"
)

// Item wraps a notification for the bubbles list.
type Item struct {
	N model.Notification
}

// FilterValue returns the title; the bell does not filter.
func (i Item) FilterValue() string { return i.N.Title }

// Delegate renders one notification per line.
type Delegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update is unused.
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws the title line and a dimmed module/age line.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.N

	marker := "○"
	title := theme.ReadStyle.Render(n.Title)
	if !n.IsRead {
		marker = "●"
		title = theme.UnreadStyle.Render(n.Title)
	}

	meta := theme.ModuleStyle(n.Module).Render(n.Module)
	if n.ProjectName != "" {
		meta += theme.ReadStyle.Render(" · " + n.ProjectName)
	}
	if n.IsProjectMuted {
		meta += theme.MutedStyle.Render(" muted")
	}
	meta += theme.ReadStyle.Render(" · " + relativeTime(n.CreatedAt, d.now()))

	line := fmt.Sprintf("%s %s\n  %s", marker, title, meta)
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

// relativeTime renders t as a short age such as "5m ago".
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Local().Format("Jan 02")
	}
}
