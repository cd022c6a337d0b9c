package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector component. The verdict comes
// from the server, so the component only tracks what was chosen.
type MultiChoice struct {
	Options     []string
	Selected    int
	Submitted   bool
	ChosenIndex int
	Locked      bool
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{
		Options:     options,
		ChosenIndex: -1,
	}
}

// Label returns the letter shown for option i.
func Label(i int) string {
	return string(rune('A' + i))
}

// Update handles keyboard navigation and selection. Letter keys jump to
// the matching option.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted || m.Locked || len(m.Options) == 0 {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Choose()
	default:
		if len(key) == 1 {
			i := int(key[0]|0x20) - 'a'
			if i >= 0 && i < len(m.Options) {
				m.Selected = i
			}
		}
	}

	return m, nil
}

// Chosen returns the submitted option.
func (m MultiChoice) Chosen() (string, bool) {
	if !m.Submitted || m.ChosenIndex < 0 || m.ChosenIndex >= len(m.Options) {
		return "", false
	}
	return m.Options[m.ChosenIndex], true
}

// Choose submits the selected option.
func (m *MultiChoice) Choose() {
	if len(m.Options) == 0 {
		return
	}
	m.Submitted = true
	m.ChosenIndex = m.Selected
}

// Reopen clears a submission so the player can choose again.
func (m *MultiChoice) Reopen() {
	m.Submitted = false
	m.ChosenIndex = -1
}

// View renders the options. After a verdict is known, pass it through
// correct to color the chosen option; nil leaves it pending.
func (m MultiChoice) View(correct *bool) string {
	var s string
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted && !m.Locked {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s)  %s", prefix, Label(i), opt)

		var style lipgloss.Style
		switch {
		case m.Submitted && i == m.ChosenIndex && correct == nil:
			style = theme.Pending.Bold(true)
		case m.Submitted && i == m.ChosenIndex && *correct:
			style = theme.Correct
		case m.Submitted && i == m.ChosenIndex:
			style = theme.Incorrect
		case m.Submitted || m.Locked:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		s += style.Render(line) + "\n"
	}

	return s
}
