package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/ui/layout"
)

// Screen is the terminal surface of one game phase. The phase controller
// mounts and unmounts it; the app model feeds it messages while mounted.
type Screen interface {
	phase.Surface

	// Init returns a command to run right after the screen is mounted.
	Init() tea.Cmd

	// Update handles messages.
	Update(msg tea.Msg) tea.Cmd

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Factory adapts a screen constructor to a phase factory.
func Factory[S Screen](build func() S) phase.Factory {
	return func() phase.Surface { return build() }
}
