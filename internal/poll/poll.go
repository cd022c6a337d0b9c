// Package poll implements the request-then-poll protocol used to obtain a
// freshly generated problem set.
package poll

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/loop"
	"github.com/abhisek/coderush/internal/metrics"
	"github.com/abhisek/coderush/internal/problem"
)

// DefaultInterval is the wait between polls.
const DefaultInterval = 3 * time.Second

// ErrPollLimit is reported when MaxPolls polls went by without a result.
var ErrPollLimit = errors.New("problem generation did not finish within the poll limit")

// State is the poller's position in the protocol.
type State int

const (
	Idle State = iota
	Requesting
	Polling
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Polling:
		return "polling"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Gateway is the part of the network gateway the poller needs.
type Gateway interface {
	RequestProblemGeneration(done func(string, error))
	PollGenerationResult(requestID string, done func(api.PollResult, error))
}

// Config controls polling cadence.
type Config struct {
	Interval time.Duration

	// MaxPolls fails a run after this many polls. Zero means no limit.
	MaxPolls int
}

// Poller owns one generation run at a time. All methods and callbacks must
// run on the dispatcher.
type Poller struct {
	gw      Gateway
	sched   loop.Scheduler
	cfg     Config
	logger  zerolog.Logger
	metrics *metrics.Set

	state     State
	run       uint64
	task      loop.Task
	requestID string
	inFlight  bool
	polls     int
	ticks     int

	onReady  func([]problem.Problem)
	onFailed func(error)
}

// New creates an idle Poller.
func New(gw Gateway, sched loop.Scheduler, cfg Config, logger zerolog.Logger, m *metrics.Set) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller{
		gw:      gw,
		sched:   sched,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// Start begins a new run, superseding any active one. Exactly one of
// onReady or onFailed is called when the run ends, unless it is cancelled
// or superseded first.
func (p *Poller) Start(onReady func([]problem.Problem), onFailed func(error)) {
	p.stopTimer()
	p.run++
	run := p.run

	p.state = Requesting
	p.requestID = ""
	p.inFlight = false
	p.polls = 0
	p.ticks = 0
	p.onReady = onReady
	p.onFailed = onFailed

	p.logger.Info().Uint64("run", run).Msg("requesting problem generation")
	p.gw.RequestProblemGeneration(func(requestID string, err error) {
		if run != p.run {
			p.logger.Debug().Uint64("run", run).Msg("dropping stale generation request")
			return
		}
		if err != nil {
			p.fail(err)
			return
		}

		p.state = Polling
		p.requestID = requestID
		p.logger.Info().Uint64("run", run).Str("request_id", requestID).Msg("polling for generated problems")

		p.poll(run)
		if p.state == Polling {
			p.task = p.sched.Every(p.cfg.Interval, func() { p.tick(run) })
		}
	})
}

// Cancel stops the active run and returns to Idle. Pending completions of
// the cancelled run are dropped.
func (p *Poller) Cancel() {
	p.stopTimer()
	p.run++
	p.state = Idle
	p.inFlight = false
	p.onReady = nil
	p.onFailed = nil
}

// State returns the current protocol state.
func (p *Poller) State() State { return p.state }

// RequestID returns the id of the current run's generation request.
func (p *Poller) RequestID() string { return p.requestID }

// Polls returns how many polls the current run has issued.
func (p *Poller) Polls() int { return p.polls }

// Ticks returns how many times the current run's timer has fired.
func (p *Poller) Ticks() int { return p.ticks }

// Active reports whether a run is in progress.
func (p *Poller) Active() bool {
	return p.state == Requesting || p.state == Polling
}

func (p *Poller) tick(run uint64) {
	if run != p.run || p.state != Polling {
		return
	}
	p.ticks++
	p.metrics.ObservePollTick()
	if p.inFlight {
		p.logger.Debug().Uint64("run", run).Msg("previous poll still in flight, skipping tick")
		return
	}
	p.poll(run)
}

func (p *Poller) poll(run uint64) {
	if p.cfg.MaxPolls > 0 && p.polls >= p.cfg.MaxPolls {
		p.fail(ErrPollLimit)
		return
	}
	p.polls++
	p.inFlight = true

	p.gw.PollGenerationResult(p.requestID, func(res api.PollResult, err error) {
		if run != p.run {
			p.logger.Debug().Uint64("run", run).Msg("dropping stale poll result")
			return
		}
		p.inFlight = false
		if err != nil {
			p.fail(err)
			return
		}
		if res.Status != api.PollReady {
			p.logger.Debug().Uint64("run", run).Int("polls", p.polls).Msg("problems not ready")
			return
		}

		p.stopTimer()
		p.state = Ready
		p.logger.Info().Uint64("run", run).Int("polls", p.polls).Int("count", len(res.Problems)).Msg("generated problems ready")
		if p.onReady != nil {
			p.onReady(res.Problems)
		}
	})
}

func (p *Poller) fail(err error) {
	p.stopTimer()
	p.state = Failed
	p.inFlight = false
	p.logger.Error().Err(err).Str("request_id", p.requestID).Int("polls", p.polls).Msg("problem generation failed")
	if p.onFailed != nil {
		p.onFailed(err)
	}
}

func (p *Poller) stopTimer() {
	if p.task != nil {
		p.task.Stop()
		p.task = nil
	}
}
