package app

import (
	"sync"

	tea "charm.land/bubbletea/v2"
)

// dispatchMsg carries posted work into the event loop.
type dispatchMsg struct {
	fn func()
}

// programDispatcher posts work to a running program. Dispatch must not be
// called from inside Update; the gateway and timers only call it from
// their own goroutines.
type programDispatcher struct {
	mu sync.Mutex
	p  *tea.Program
}

func (d *programDispatcher) attach(p *tea.Program) {
	d.mu.Lock()
	d.p = p
	d.mu.Unlock()
}

func (d *programDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	p := d.p
	d.mu.Unlock()
	if p == nil {
		return
	}
	p.Send(dispatchMsg{fn: fn})
}
