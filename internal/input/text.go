package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// promptLine runs a single-line editor with placeholder and cursor support.
// Cancelling returns ok=false and the caller falls back to the default.
func promptLine(message, defaultValue string) (string, bool) {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(message) + ": "
	ti.Placeholder = defaultValue
	ti.Focus()

	p := tea.NewProgram(textModel{input: ti})
	final, err := p.Run()
	if err != nil {
		return "", false
	}

	m := final.(textModel)
	if m.cancelled {
		return "", false
	}
	return m.input.Value(), true
}

// textModel is the BubbleTea model for one-line text entry
type textModel struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

func (m textModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m textModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.input.View() + "\n"
}
