package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar: the title, the unread badge
// and the transport status on the right.
func (l Layout) RenderHeader(title string, unread int, transport string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	if unread > 0 {
		titleRendered = lipgloss.JoinHorizontal(lipgloss.Top, titleRendered, Badge(unread))
	}

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(theme.TransportStyle(transport).
			Background(theme.HeaderStyle.GetBackground()).
			Render("● " + transport))

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(statusRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar. A non-empty status
// message replaces the keyboard hints.
func (l Layout) RenderStatusBar(hints string, status string, isErr bool) string {
	text := hints
	if status != "" {
		text = status
		if isErr {
			text = theme.ErrorStyle.Background(theme.StatusBarStyle.GetBackground()).Render(status)
		}
	}
	rendered := theme.StatusBarStyle.Render(text)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}

// Badge renders an unread counter, capped at 99+.
func Badge(unread int) string {
	if unread <= 0 {
		return ""
	}
	label := strconv.Itoa(unread)
	if unread > 99 {
		label = "99+"
	}
	return theme.BadgeStyle.Render(label)
}
