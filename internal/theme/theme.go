package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps full-screen overlays such as help and setup.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BadgeStyle renders the unread counter.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(ColorRed).
	Padding(0, 1)

// UnreadStyle marks unread titles.
var UnreadStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite)

// ReadStyle dims notifications that have been read.
var ReadStyle = lipgloss.NewStyle().Foreground(ColorGray)

// MutedStyle tags notifications of muted projects.
var MutedStyle = lipgloss.NewStyle().Foreground(ColorOrange).Italic(true)

// ErrorStyle renders failure text in the status bar.
var ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)

// TransportStyle returns a color-coded style for a delivery mode label.
func TransportStyle(state string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch state {
	case "live":
		return base.Foreground(ColorGreen)
	case "reconnecting":
		return base.Foreground(ColorYellow)
	case "polling":
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorGray)
	}
}

// ModuleStyle colors the producing-module label of a notification.
func ModuleStyle(module string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch module {
	case "Projects", "projects":
		return base.Foreground(ColorBlue)
	case "Documents", "documents":
		return base.Foreground(ColorGreen)
	case "Tasks", "tasks":
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}

// Apply switches the palette. "mono" drops all colors for terminals that
// render them poorly; any other name keeps the default palette.
func Apply(name string) {
	if name != "mono" {
		return
	}

	plain := lipgloss.NoColor{}
	HeaderStyle = HeaderStyle.Foreground(plain).Background(plain).Reverse(true)
	StatusBarStyle = StatusBarStyle.Foreground(plain).Background(plain)
	BadgeStyle = BadgeStyle.Foreground(plain).Background(plain).Reverse(true)
	SelectedItemStyle = SelectedItemStyle.Foreground(plain).BorderForeground(plain)
	UnreadStyle = UnreadStyle.Foreground(plain)
	ReadStyle = ReadStyle.Foreground(plain).Faint(true)
	MutedStyle = MutedStyle.Foreground(plain)
	ErrorStyle = ErrorStyle.Foreground(plain)
}
