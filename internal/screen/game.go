package screen

import (
	"github.com/abhisek/coderush/internal/events"
	"github.com/abhisek/coderush/internal/game"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/poll"
	"github.com/abhisek/coderush/internal/session"
)

// Game is the session API that screens read and drive.
// *game.Orchestrator implements it.
type Game interface {
	Events() *events.Bus
	Phase() phase.Phase
	Snapshot() session.Snapshot
	LastSummary() *session.Summary
	LastError() error
	CanRetry() bool
	PollState() poll.State

	StartSession(nickname string) error
	RetryAcquire() bool
	Submit(a game.Answer) error
	GoToNextProblem()
	ResetGameState()
	SetGamePhase(p phase.Phase) bool
}

var _ Game = (*game.Orchestrator)(nil)
