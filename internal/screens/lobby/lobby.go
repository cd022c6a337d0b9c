// Package lobby implements the nickname prompt that starts a session.
package lobby

import (
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/game"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/screen"
	"github.com/abhisek/coderush/internal/ui/components"
	"github.com/abhisek/coderush/internal/ui/layout"
	"github.com/abhisek/coderush/internal/ui/theme"
)

// MaxNickname bounds nickname length.
const MaxNickname = 24

// LobbyScreen asks for a nickname and starts the session.
type LobbyScreen struct {
	game   screen.Game
	input  components.TextInput
	errMsg string
}

var _ screen.Screen = (*LobbyScreen)(nil)
var _ screen.KeyHintProvider = (*LobbyScreen)(nil)

// New creates a LobbyScreen with the input prefilled with nickname.
func New(g screen.Game, nickname string) *LobbyScreen {
	input := components.NewTextInput("your nickname", MaxNickname)
	input.Model.SetValue(nickname)
	input.Model.CursorEnd()
	return &LobbyScreen{game: g, input: input}
}

func (s *LobbyScreen) Mount()   {}
func (s *LobbyScreen) Unmount() {}

func (s *LobbyScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *LobbyScreen) Title() string {
	return "Lobby"
}

func (s *LobbyScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LobbyScreen) Update(msg tea.Msg) tea.Cmd {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "esc":
			s.game.SetGamePhase(phase.Title)
			return nil
		case "enter":
			s.start()
			return nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		s.errMsg = ""
	}
	return cmd
}

func (s *LobbyScreen) start() {
	err := s.game.StartSession(s.input.Value())
	switch {
	case errors.Is(err, game.ErrEmptyNickname):
		s.errMsg = "Pick a nickname first."
	case err != nil:
		s.errMsg = err.Error()
	}
}

func (s *LobbyScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Who's playing?"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
		Render("Your nickname registers a player on the server."))
	b.WriteString("\n\n")
	b.WriteString("Nickname: " + s.input.View())

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	card := components.Card(b.String(), components.ContentWidth(width))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// Nickname returns the current input value.
func (s *LobbyScreen) Nickname() string {
	return s.input.Value()
}
