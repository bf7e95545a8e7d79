package command

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/theme"
)

// CommandMsg is emitted when the user executes a palette command.
type CommandMsg struct {
	Name string
	Arg  string
}

// spec describes one palette command.
type spec struct {
	name string
	args []string
	help string
}

var commands = []spec{
	{name: "refresh", help: "re-fetch notifications"},
	{name: "read-all", help: "mark every notification read"},
	{name: "bell", help: "show the bell view"},
	{name: "center", help: "show the notification center"},
	{name: "filter", args: []string{"all", "unread", "read"}, help: "filter the center by status"},
	{name: "sort", args: []string{"newest", "oldest", "title", "project"}, help: "sort the center"},
	{name: "clear", help: "clear center filters"},
	{name: "quit", help: "exit"},
}

// Parse turns an input line into a command.
func Parse(line string) (CommandMsg, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return CommandMsg{}, fmt.Errorf("empty command")
	}

	name, rest := fields[0], fields[1:]
	if name == "q" {
		name = "quit"
	}
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if len(c.args) == 0 {
			if len(rest) > 0 {
				return CommandMsg{}, fmt.Errorf("%s takes no argument", name)
			}
			return CommandMsg{Name: name}, nil
		}
		if len(rest) != 1 || !slices.Contains(c.args, rest[0]) {
			return CommandMsg{}, fmt.Errorf("usage: %s %s", name, strings.Join(c.args, "|"))
		}
		return CommandMsg{Name: name, Arg: rest[0]}, nil
	}
	return CommandMsg{}, fmt.Errorf("unknown command %q", name)
}

// suggestions lists every complete command line for tab completion.
func suggestions() []string {
	var out []string
	for _, c := range commands {
		if len(c.args) == 0 {
			out = append(out, c.name)
			continue
		}
		for _, a := range c.args {
			out = append(out, c.name+" "+a)
		}
	}
	return out
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    error
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(suggestions())
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		line := m.input.Value()
		parsed, err := Parse(line)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.input.Reset()
		return m, func() tea.Msg { return parsed }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Command Palette"), m.input.View()}
	if m.err != nil {
		lines = append(lines, theme.ErrorStyle.Render(m.err.Error()))
	}
	lines = append(lines, "")
	for _, c := range commands {
		usage := c.name
		if len(c.args) > 0 {
			usage += " " + strings.Join(c.args, "|")
		}
		lines = append(lines, theme.HelpStyle.Render(fmt.Sprintf("%-32s %s", usage, c.help)))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input and clears old input.
func (m *Model) Focus() tea.Cmd {
	m.err = nil
	m.input.Reset()
	return m.input.Focus()
}

// Blur releases keyboard focus.
func (m *Model) Blur() {
	m.input.Blur()
}
