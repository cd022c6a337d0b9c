package store

import (
	"context"
	"time"

	"github.com/abhisek/coderush/internal/problem"
	"github.com/abhisek/coderush/internal/session"
)

// SessionRecord is one finished problem set as stored.
type SessionRecord struct {
	Sequence   int64
	SessionID  string
	UserID     string
	Nickname   string
	Total      int
	Answered   int
	Correct    int
	StartedAt  time.Time
	FinishedAt time.Time
	Missed     []problem.Problem
}

// Accuracy returns correct over answered, or 0 when nothing was answered.
func (r SessionRecord) Accuracy() float64 {
	if r.Answered == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Answered)
}

// SessionRepo stores finished sessions.
type SessionRepo interface {
	// AppendSession records a summary. Recording the same session twice
	// replaces the earlier row.
	AppendSession(ctx context.Context, s *session.Summary) error

	// RecentSessions returns up to limit sessions, newest first.
	// A limit of 0 returns all.
	RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error)

	// Clear deletes all sessions and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
}
