package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/problem"
)

// UserID is the server-assigned player handle.
type UserID = api.UserID

// State tracks the runtime state of one play session. It has a single
// owner, the orchestrator, and is only touched from the dispatcher.
type State struct {
	// SessionID is the UUID for this session.
	SessionID string

	// Nickname is the name the user registered with.
	Nickname string

	// User is empty until CreateUser succeeds.
	User UserID

	// Problems is the loaded set, replaced wholesale on load.
	Problems []problem.Problem

	// Index is the 0-based position of the current problem.
	Index int

	// Correct counts correct answers in the current set.
	Correct int

	// Answered counts judged submissions in the current set.
	Answered int

	// Missed holds incorrectly answered problems in answer order.
	Missed []problem.Problem

	// Epoch changes every time the set or the session is replaced.
	// Completions captured under an older epoch are stale.
	Epoch uint64

	// StartedAt is when the session began.
	StartedAt time.Time
}

// NewState creates an empty state with no session started.
func NewState() *State {
	return &State{}
}

// Begin starts a new session for nickname, discarding the previous user,
// set and progress.
func (s *State) Begin(nickname string, now time.Time) {
	s.Reset()
	s.SessionID = uuid.NewString()
	s.Nickname = nickname
	s.StartedAt = now
}

// SetUser records the server-assigned user.
func (s *State) SetUser(id UserID) {
	s.User = id
}

// HasUser reports whether CreateUser has succeeded this session.
func (s *State) HasUser() bool {
	return s.User != ""
}

// LoadSet replaces the problem set and resets progress. It returns the new
// epoch.
func (s *State) LoadSet(problems []problem.Problem) uint64 {
	s.Problems = problems
	s.resetProgress()
	s.Epoch++
	return s.Epoch
}

// Reset clears the user, the set and all progress together.
func (s *State) Reset() {
	s.SessionID = ""
	s.Nickname = ""
	s.User = ""
	s.Problems = nil
	s.StartedAt = time.Time{}
	s.resetProgress()
	s.Epoch++
}

func (s *State) resetProgress() {
	s.Index = 0
	s.Correct = 0
	s.Answered = 0
	s.Missed = nil
}

// Total returns the size of the loaded set.
func (s *State) Total() int {
	return len(s.Problems)
}

// Current returns the problem at Index.
func (s *State) Current() (problem.Problem, bool) {
	if s.Index < 0 || s.Index >= len(s.Problems) {
		return problem.Problem{}, false
	}
	return s.Problems[s.Index], true
}

// HasNext reports whether a problem follows the current one.
func (s *State) HasNext() bool {
	return s.Index+1 < len(s.Problems)
}

// Advance moves to the next problem. It returns false, leaving Index
// unchanged, when the current problem is the last.
func (s *State) Advance() bool {
	if !s.HasNext() {
		return false
	}
	s.Index++
	return true
}

// RecordAnswer applies one verdict for p.
func (s *State) RecordAnswer(p problem.Problem, correct bool) {
	s.Answered++
	if correct {
		s.Correct++
		return
	}
	s.Missed = append(s.Missed, p)
}

// Snapshot is a read-only copy of State for presentation.
type Snapshot struct {
	SessionID  string
	Nickname   string
	User       UserID
	Index      int
	Total      int
	Correct    int
	Answered   int
	Missed     []problem.Problem
	Current    problem.Problem
	HasCurrent bool
}

// Snapshot copies the presentable parts of the state.
func (s *State) Snapshot() Snapshot {
	cur, ok := s.Current()
	return Snapshot{
		SessionID:  s.SessionID,
		Nickname:   s.Nickname,
		User:       s.User,
		Index:      s.Index,
		Total:      len(s.Problems),
		Correct:    s.Correct,
		Answered:   s.Answered,
		Missed:     append([]problem.Problem(nil), s.Missed...),
		Current:    cur,
		HasCurrent: ok,
	}
}
