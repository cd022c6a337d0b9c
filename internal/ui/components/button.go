package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coderush/internal/ui/theme"
)

// Button is a styled button. It fires on Enter while active, or on its
// hotkey at any time it is shown.
type Button struct {
	Label   string
	Key     string
	Active  bool
	OnPress func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label, key string, active bool, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		Key:     key,
		Active:  active,
		OnPress: onPress,
	}
}

// Update handles key events.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || b.OnPress == nil {
		return b, nil
	}

	switch key := kmsg.String(); {
	case key == "enter" && b.Active:
		return b, b.OnPress()
	case b.Key != "" && key == b.Key:
		return b, b.OnPress()
	}
	return b, nil
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Key != "" {
		label += " [" + b.Key + "]"
	}
	if b.Active {
		return theme.ButtonActive.Render("▸ " + label)
	}
	return theme.ButtonInactive.Render(label)
}
