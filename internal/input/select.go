package input

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)
)

// Select shows a keyboard-navigable menu of options and returns the chosen
// one. If the user cancels (q, esc, ctrl+c), the default option is returned.
//
// Example:
//
//	license := input.Select("License", []string{"mit", "apache-2.0", "none"}, "mit")
func Select(message string, options []string, defaultValue string) string {
	if len(options) == 0 {
		return defaultValue
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return Prompt(message+" ("+strings.Join(options, "/")+")", defaultValue)
	}

	cursor := 0
	for i, opt := range options {
		if opt == defaultValue {
			cursor = i
			break
		}
	}

	model := selectModel{message: message, options: options, cursor: cursor}
	p := tea.NewProgram(model)
	finalModel, err := p.Run()
	if err != nil {
		return defaultValue
	}

	result := finalModel.(selectModel)
	if result.selected == nil {
		return defaultValue
	}

	return *result.selected
}

// selectModel is the BubbleTea model for the option menu
type selectModel struct {
	message  string
	options  []string
	cursor   int
	selected *string
}

// Init initializes the menu model
func (m selectModel) Init() tea.Cmd {
	return nil
}

// Update handles keyboard input
func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}

		case "enter":
			choice := m.options[m.cursor]
			m.selected = &choice
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the menu
func (m selectModel) View() string {
	s := titleStyle.Render(m.message) + "\n"
	s += hintStyle.Render("    [↑/↓] Navigate    [Enter] Select    [q] Use default") + "\n\n"

	for i, opt := range m.options {
		if m.cursor == i {
			s += "    " + selectedStyle.Render("> "+opt) + "\n"
		} else {
			s += fmt.Sprintf("      %s\n", opt)
		}
	}

	return s
}
