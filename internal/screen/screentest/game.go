// Package screentest provides a scripted Game for screen tests.
package screentest

import (
	"github.com/abhisek/coderush/internal/events"
	"github.com/abhisek/coderush/internal/game"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/poll"
	"github.com/abhisek/coderush/internal/screen"
	"github.com/abhisek/coderush/internal/session"
)

// Game records the calls screens make. Exported fields script the values
// its getters return.
type Game struct {
	Bus       *events.Bus
	Current   phase.Phase
	Snap      session.Snapshot
	Summary   *session.Summary
	Err       error
	Retryable bool
	Poll      poll.State

	// StartErr and SubmitErr are returned by StartSession and Submit.
	StartErr  error
	SubmitErr error

	Nicknames []string
	Answers   []game.Answer
	Phases    []phase.Phase
	Retries   int
	Nexts     int
	Resets    int
}

var _ screen.Game = (*Game)(nil)

// New returns a Game in the Title phase with an empty bus.
func New() *Game {
	return &Game{Bus: events.NewBus(), Current: phase.Title}
}

func (g *Game) Events() *events.Bus           { return g.Bus }
func (g *Game) Phase() phase.Phase            { return g.Current }
func (g *Game) Snapshot() session.Snapshot    { return g.Snap }
func (g *Game) LastSummary() *session.Summary { return g.Summary }
func (g *Game) LastError() error              { return g.Err }
func (g *Game) CanRetry() bool                { return g.Retryable }
func (g *Game) PollState() poll.State         { return g.Poll }

func (g *Game) StartSession(nickname string) error {
	g.Nicknames = append(g.Nicknames, nickname)
	return g.StartErr
}

func (g *Game) RetryAcquire() bool {
	if !g.Retryable {
		return false
	}
	g.Retries++
	return true
}

func (g *Game) Submit(a game.Answer) error {
	g.Answers = append(g.Answers, a)
	return g.SubmitErr
}

func (g *Game) GoToNextProblem() { g.Nexts++ }

func (g *Game) ResetGameState() {
	g.Resets++
	g.Current = phase.Title
}

func (g *Game) SetGamePhase(p phase.Phase) bool {
	g.Phases = append(g.Phases, p)
	if p == g.Current {
		return false
	}
	g.Current = p
	return true
}
