// Package loop provides the single logical thread that owns session state.
//
// Work posted with Dispatch runs serially, in posting order, on whichever
// goroutine drives the dispatcher. Network completions and timer ticks are
// always delivered this way, so the code they call never needs locks.
package loop

import (
	"context"
	"sync"
)

// Dispatcher runs posted functions one at a time.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Loop is a goroutine-driven Dispatcher for headless use.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// New creates a Loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Dispatch queues fn. It never blocks and is safe from any goroutine.
// Functions posted after Stop are dropped.
func (l *Loop) Dispatch(fn func()) {
	select {
	case <-l.stopped:
		return
	default:
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopped:
			return nil
		case <-l.wake:
		}
	}
}

// Stop makes Run return after the function currently running.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stopped) })
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		select {
		case <-l.stopped:
			return
		default:
		}
		fn()
	}
}

// Manual is a Dispatcher that only runs work when asked. Tests use it to
// control exactly when completions are delivered.
type Manual struct {
	mu    sync.Mutex
	queue []func()
}

// Dispatch queues fn.
func (m *Manual) Dispatch(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Pending returns the number of queued functions.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// RunPending runs queued functions, including any they post, until the
// queue is empty. It returns how many ran.
func (m *Manual) RunPending() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return n
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		fn()
		n++
	}
}
