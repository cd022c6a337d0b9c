package loop

import (
	"sync"
	"sync/atomic"
	"time"
)

// Task is a scheduled callback that can be cancelled.
type Task interface {
	// Stop cancels the task. After Stop returns, fn is not invoked again,
	// even if a tick was already posted to the dispatcher.
	Stop()
}

// Scheduler creates timed tasks whose callbacks run on a Dispatcher.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
	Every(d time.Duration, fn func()) Task
}

// Timers is the wall-clock Scheduler.
type Timers struct {
	d Dispatcher
}

// NewTimers creates a Scheduler that posts callbacks to d.
func NewTimers(d Dispatcher) *Timers {
	return &Timers{d: d}
}

// After runs fn once, d from now.
func (t *Timers) After(d time.Duration, fn func()) Task {
	task := &timerTask{}
	task.timer = time.AfterFunc(d, func() {
		t.d.Dispatch(func() {
			if task.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return task
}

// Every runs fn each interval until stopped. The first call is one
// interval from now.
func (t *Timers) Every(interval time.Duration, fn func()) Task {
	task := &tickerTask{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-task.done:
				return
			case <-task.ticker.C:
				t.d.Dispatch(func() {
					if !task.stopped.Load() {
						fn()
					}
				})
			}
		}
	}()
	return task
}

type timerTask struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *timerTask) Stop() {
	t.stopped.Store(true)
	t.timer.Stop()
}

type tickerTask struct {
	ticker  *time.Ticker
	done    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

func (t *tickerTask) Stop() {
	t.once.Do(func() {
		t.stopped.Store(true)
		t.ticker.Stop()
		close(t.done)
	})
}

// ManualScheduler is a Scheduler driven by explicit Advance calls. Due
// callbacks run inline, so it is meant to be used on the dispatcher's
// goroutine.
type ManualScheduler struct {
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	next     time.Duration
	interval time.Duration
	fn       func()
	stopped  bool
}

func (t *manualTask) Stop() { t.stopped = true }

// After schedules fn to run once d from the scheduler's current time.
func (s *ManualScheduler) After(d time.Duration, fn func()) Task {
	task := &manualTask{next: s.now + d, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// Every schedules fn each interval.
func (s *ManualScheduler) Every(interval time.Duration, fn func()) Task {
	task := &manualTask{next: s.now + interval, interval: interval, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// Advance moves the clock forward by d, running every callback that falls
// due in order of due time.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		task := s.nextDue(target)
		if task == nil {
			break
		}
		s.now = task.next
		if task.interval > 0 {
			task.next += task.interval
		} else {
			task.stopped = true
		}
		task.fn()
	}
	s.now = target
	s.compact()
}

// Active returns the number of tasks that have not been stopped or fired.
func (s *ManualScheduler) Active() int {
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (s *ManualScheduler) nextDue(limit time.Duration) *manualTask {
	var due *manualTask
	for _, t := range s.tasks {
		if t.stopped || t.next > limit {
			continue
		}
		if due == nil || t.next < due.next {
			due = t
		}
	}
	return due
}

func (s *ManualScheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.tasks = live
}
