package session

import (
	"time"

	"github.com/abhisek/coderush/internal/problem"
)

// Summary holds the data displayed on the result screen and written to
// the history store.
type Summary struct {
	SessionID  string
	User       UserID
	Nickname   string
	Total      int
	Answered   int
	Correct    int
	Accuracy   float64
	Missed     []problem.Problem
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the session ran.
func (s *Summary) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.Before(s.StartedAt) {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// BuildSummary creates a Summary from the current session state.
func BuildSummary(state *State, now time.Time) *Summary {
	var accuracy float64
	if state.Answered > 0 {
		accuracy = float64(state.Correct) / float64(state.Answered)
	}

	return &Summary{
		SessionID:  state.SessionID,
		User:       state.User,
		Nickname:   state.Nickname,
		Total:      len(state.Problems),
		Answered:   state.Answered,
		Correct:    state.Correct,
		Accuracy:   accuracy,
		Missed:     append([]problem.Problem(nil), state.Missed...),
		StartedAt:  state.StartedAt,
		FinishedAt: now,
	}
}
