// Package events is the publish/subscribe surface of a game session.
package events

import (
	"github.com/abhisek/coderush/internal/problem"
)

// Topic is a synchronous broadcast channel for one event type. Subscribers
// run in subscription order on the publisher's goroutine, so a Topic must
// only be used from the dispatcher.
type Topic[T any] struct {
	next int
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.next++
	id := t.next
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers v to every current subscriber. Subscribers added or
// removed during delivery take effect from the next Publish.
func (t *Topic[T]) Publish(v T) {
	subs := t.subs
	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of subscribers.
func (t *Topic[T]) Len() int { return len(t.subs) }

// ProblemSetLoaded is published when a new set replaces the old one.
type ProblemSetLoaded struct {
	Count int
}

// AnswerResult carries the server's verdict for one submission.
type AnswerResult struct {
	ProblemID int
	Correct   bool
}

// ProblemChanged is published when the current problem changes.
type ProblemChanged struct {
	Index   int
	Total   int
	Problem problem.Problem
}

// PhaseChanged is published after each phase transition. Phases are carried
// as names so this package stays below the phase controller.
type PhaseChanged struct {
	From string
	To   string
}

// Failure reports a failed network operation.
type Failure struct {
	Op  string
	Err error
}

// Bus groups the session's topics.
type Bus struct {
	ProblemSetLoaded Topic[ProblemSetLoaded]
	AnswerResult     Topic[AnswerResult]
	ProblemChanged   Topic[ProblemChanged]
	PhaseChanged     Topic[PhaseChanged]
	Failure          Topic[Failure]
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}
