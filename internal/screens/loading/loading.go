// Package loading implements the screen shown while a player is registered
// and a problem set is acquired.
package loading

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/events"
	"github.com/abhisek/coderush/internal/game"
	"github.com/abhisek/coderush/internal/poll"
	"github.com/abhisek/coderush/internal/screen"
	"github.com/abhisek/coderush/internal/ui/components"
	"github.com/abhisek/coderush/internal/ui/layout"
	"github.com/abhisek/coderush/internal/ui/theme"
)

const spinnerInterval = 120 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerTickMsg animates the spinner of the screen that scheduled it.
type spinnerTickMsg struct {
	owner *LoadingScreen
}

// LoadingScreen shows acquisition progress and, after a failure, offers a
// retry.
type LoadingScreen struct {
	game    screen.Game
	frame   int
	failure *events.Failure
	retry   components.Button

	unsubscribe []func()
}

var _ screen.Screen = (*LoadingScreen)(nil)
var _ screen.KeyHintProvider = (*LoadingScreen)(nil)

// New creates a LoadingScreen.
func New(g screen.Game) *LoadingScreen {
	s := &LoadingScreen{game: g}
	s.retry = components.NewButton("Retry", "r", true, s.doRetry)
	return s
}

// Mount subscribes to failures. A failure that happened before mounting
// is picked up from the game.
func (s *LoadingScreen) Mount() {
	bus := s.game.Events()
	s.unsubscribe = append(s.unsubscribe,
		bus.Failure.Subscribe(func(f events.Failure) {
			s.failure = &f
		}),
	)
	if err := s.game.LastError(); err != nil && s.game.CanRetry() {
		s.failure = &events.Failure{Err: err}
	}
}

func (s *LoadingScreen) Unmount() {
	for _, u := range s.unsubscribe {
		u()
	}
	s.unsubscribe = nil
}

func (s *LoadingScreen) Init() tea.Cmd {
	return s.tick()
}

func (s *LoadingScreen) tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{owner: s}
	})
}

func (s *LoadingScreen) Title() string {
	return "Loading"
}

func (s *LoadingScreen) KeyHints() []layout.KeyHint {
	if s.failure != nil {
		return []layout.KeyHint{
			{Key: "r", Description: "Retry"},
			{Key: "Esc", Description: "Give up"},
		}
	}
	return []layout.KeyHint{
		{Key: "Esc", Description: "Cancel"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoadingScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinnerTickMsg:
		if msg.owner != s {
			return nil
		}
		s.frame = (s.frame + 1) % len(spinnerFrames)
		return s.tick()

	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.game.ResetGameState()
			return nil
		}
		if s.failure != nil {
			var cmd tea.Cmd
			s.retry, cmd = s.retry.Update(msg)
			return cmd
		}
	}
	return nil
}

func (s *LoadingScreen) doRetry() tea.Cmd {
	if s.game.RetryAcquire() {
		s.failure = nil
	}
	return nil
}

// Failed reports whether the screen is showing a failure.
func (s *LoadingScreen) Failed() bool {
	return s.failure != nil
}

func (s *LoadingScreen) View(width, height int) string {
	var b strings.Builder

	if s.failure != nil {
		b.WriteString(theme.Incorrect.Render("Something went wrong"))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).
			Width(components.ContentWidth(width) - 6).
			Render(describe(s.failure.Err)))
		b.WriteString("\n\n")
		b.WriteString(s.retry.View())
	} else {
		b.WriteString(theme.Pending.Render(spinnerFrames[s.frame]))
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(s.status()))
	}

	card := components.Card(b.String(), components.ContentWidth(width))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *LoadingScreen) status() string {
	snap := s.game.Snapshot()
	switch {
	case snap.User == "":
		return fmt.Sprintf("Registering %s...", snap.Nickname)
	case s.game.PollState() == poll.Requesting:
		return "Asking the server for a fresh problem set..."
	case s.game.PollState() == poll.Polling:
		return "Generating problems, hang tight..."
	default:
		return "Fetching the problem set..."
	}
}

// describe turns an acquisition error into a player-facing sentence.
func describe(err error) string {
	var te *api.TransportError
	var inv *api.InvalidResponseError
	switch {
	case err == nil:
		return "Unknown error."
	case errors.As(err, &te):
		return "Could not reach the server. Is it running?"
	case errors.As(err, &inv) && inv.Err != nil:
		return "The server sent a response that could not be read."
	case errors.As(err, &inv):
		return fmt.Sprintf("The server answered HTTP %d to %s.", inv.StatusCode, inv.Op)
	case errors.Is(err, game.ErrEmptySet):
		return "The server returned no playable problems."
	case errors.Is(err, poll.ErrPollLimit):
		return "Problem generation is taking too long."
	default:
		return err.Error()
	}
}
