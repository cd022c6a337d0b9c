// Package game sequences a play session: user registration, problem set
// acquisition, answering, scoring and phase changes.
package game

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/events"
	"github.com/abhisek/coderush/internal/gateway"
	"github.com/abhisek/coderush/internal/loop"
	"github.com/abhisek/coderush/internal/metrics"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/poll"
	"github.com/abhisek/coderush/internal/problem"
	"github.com/abhisek/coderush/internal/session"
)

// DefaultSettleDelay is the pause between user creation and set fetch.
const DefaultSettleDelay = time.Second

var (
	// ErrEmptySet is reported when the server returns a set with no usable
	// problems.
	ErrEmptySet = errors.New("problem set is empty")

	// ErrNoProblem is returned when answering with no current problem.
	ErrNoProblem = errors.New("no current problem")

	// ErrEmptyNickname is returned by StartSession for a blank nickname.
	ErrEmptyNickname = errors.New("nickname is empty")
)

// Recorder persists finished sessions.
type Recorder interface {
	Record(ctx context.Context, s *session.Summary) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, s *session.Summary) error

func (f RecorderFunc) Record(ctx context.Context, s *session.Summary) error { return f(ctx, s) }

// Config tunes the session flow.
type Config struct {
	// SettleDelay is waited after CreateUser succeeds before the set is
	// requested.
	SettleDelay time.Duration

	// UseGeneration acquires sets through the generate-and-poll protocol
	// instead of the ready-made set endpoint.
	UseGeneration bool

	Poll poll.Config
}

// Deps are the collaborators of an Orchestrator. Gateway, Scheduler and
// Phases are required.
type Deps struct {
	Gateway   gateway.Gateway
	Scheduler loop.Scheduler
	Phases    *phase.Controller
	Bus       *events.Bus
	Recorder  Recorder
	Logger    zerolog.Logger
	Metrics   *metrics.Set
	Now       func() time.Time
}

// Answer is player input for Submit. Which fields are used depends on the
// current problem's kind.
type Answer struct {
	Choice string
	Fix    string
	Text   string
}

// stage names the step a failed session can be resumed from.
type stage int

const (
	stageNone stage = iota
	stageCreateUser
	stageAcquire
)

// Orchestrator owns the session state and drives every transition. All
// methods must be called on the dispatcher that the gateway and scheduler
// deliver to.
type Orchestrator struct {
	gw       gateway.Gateway
	sched    loop.Scheduler
	phases   *phase.Controller
	bus      *events.Bus
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
	cfg      Config

	state  *session.State
	poller *poll.Poller
	settle loop.Task

	failed      stage
	lastErr     error
	lastSummary *session.Summary

	// finished is set once the loaded set has been summarized. Verdicts
	// that land afterwards are dropped so the summary stays final.
	finished bool
}

// New wires an Orchestrator. The phase controller's transitions are
// republished on the event bus.
func New(deps Deps, cfg Config) *Orchestrator {
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	bus := deps.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	o := &Orchestrator{
		gw:       deps.Gateway,
		sched:    deps.Scheduler,
		phases:   deps.Phases,
		bus:      bus,
		recorder: deps.Recorder,
		logger:   deps.Logger,
		now:      now,
		cfg:      cfg,
		state:    session.NewState(),
		poller:   poll.New(deps.Gateway, deps.Scheduler, cfg.Poll, deps.Logger, deps.Metrics),
	}
	o.phases.OnChange(func(tr phase.Transition) {
		o.bus.PhaseChanged.Publish(events.PhaseChanged{From: tr.From.String(), To: tr.To.String()})
	})
	return o
}

// Events returns the bus that session events are published on.
func (o *Orchestrator) Events() *events.Bus { return o.bus }

// Phase returns the current game phase.
func (o *Orchestrator) Phase() phase.Phase { return o.phases.Current() }

// Snapshot returns a copy of the session state.
func (o *Orchestrator) Snapshot() session.Snapshot { return o.state.Snapshot() }

// LastSummary returns the summary of the most recently finished set.
func (o *Orchestrator) LastSummary() *session.Summary { return o.lastSummary }

// Problems returns a copy of the loaded set.
func (o *Orchestrator) Problems() []problem.Problem {
	return append([]problem.Problem(nil), o.state.Problems...)
}

// LastError returns the error that stalled the session, or nil.
func (o *Orchestrator) LastError() error { return o.lastErr }

// CanRetry reports whether RetryAcquire has a failed step to re-run.
func (o *Orchestrator) CanRetry() bool { return o.failed != stageNone }

// PollState returns the state of the generation poller.
func (o *Orchestrator) PollState() poll.State { return o.poller.State() }

// StartSession discards any previous session, registers nickname and
// acquires a problem set. Progress is reported through events; a failure
// leaves the session in Loading until RetryAcquire or ResetGameState.
func (o *Orchestrator) StartSession(nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return ErrEmptyNickname
	}

	o.stopPending()
	o.state.Begin(nickname, o.now())
	o.lastSummary = nil
	o.finished = false
	o.logger.Info().Str("session_id", o.state.SessionID).Str("nickname", nickname).Msg("starting session")

	o.phases.Set(phase.Loading)
	o.createUser()
	return nil
}

func (o *Orchestrator) createUser() {
	o.clearFailure()
	epoch := o.state.Epoch
	o.gw.CreateUser(o.state.Nickname, func(id api.UserID, err error) {
		if epoch != o.state.Epoch {
			o.logger.Debug().Msg("dropping user creation for a replaced session")
			return
		}
		if err != nil {
			o.fail(api.OpCreateUser, err, stageCreateUser)
			return
		}

		o.state.SetUser(id)
		o.settle = o.sched.After(o.cfg.SettleDelay, func() {
			o.settle = nil
			if epoch != o.state.Epoch {
				return
			}
			o.acquire()
		})
	})
}

// acquire loads a set the configured way.
func (o *Orchestrator) acquire() {
	if o.cfg.UseGeneration {
		o.RequestProblemGeneration()
		return
	}
	o.GetProblemSet()
}

// GetProblemSet fetches a ready-made set and loads it on success. It does
// not require a registered user.
func (o *Orchestrator) GetProblemSet() {
	o.clearFailure()
	o.poller.Cancel()
	epoch := o.state.Epoch
	o.gw.GetProblemSet(func(problems []problem.Problem, err error) {
		if epoch != o.state.Epoch {
			o.logger.Debug().Msg("dropping problem set for a replaced session")
			return
		}
		if err != nil {
			o.fail(api.OpGetProblemSet, err, stageAcquire)
			return
		}
		o.loadSet(api.OpGetProblemSet, problems)
	})
}

// RequestProblemGeneration starts the generate-and-poll protocol and loads
// the generated set once it is ready.
func (o *Orchestrator) RequestProblemGeneration() {
	o.clearFailure()
	epoch := o.state.Epoch
	o.poller.Start(
		func(problems []problem.Problem) {
			if epoch != o.state.Epoch {
				o.logger.Debug().Msg("dropping generated set for a replaced session")
				return
			}
			o.loadSet(api.OpPollResult, problems)
		},
		func(err error) {
			if epoch != o.state.Epoch {
				return
			}
			o.fail(opOf(err, api.OpPollResult), err, stageAcquire)
		},
	)
}

// RetryAcquire re-runs the step that failed. It returns false when nothing
// has failed.
func (o *Orchestrator) RetryAcquire() bool {
	switch o.failed {
	case stageCreateUser:
		o.logger.Info().Msg("retrying user creation")
		o.phases.Set(phase.Loading)
		o.createUser()
	case stageAcquire:
		o.logger.Info().Msg("retrying problem set acquisition")
		o.phases.Set(phase.Loading)
		o.acquire()
	default:
		return false
	}
	return true
}

func (o *Orchestrator) loadSet(op string, problems []problem.Problem) {
	if len(problems) == 0 {
		o.fail(op, ErrEmptySet, stageAcquire)
		return
	}

	o.state.LoadSet(problems)
	o.finished = false
	o.clearFailure()
	o.logger.Info().Int("count", len(problems)).Msg("problem set loaded")

	o.bus.ProblemSetLoaded.Publish(events.ProblemSetLoaded{Count: len(problems)})
	o.publishCurrent()
	o.phases.Set(phase.InGame)
}

// SubmitObjective answers the current problem with a choice. fixAttempt
// is sent for BUGFIX problems only.
func (o *Orchestrator) SubmitObjective(choice, fixAttempt string) error {
	cur, ok := o.state.Current()
	if !ok {
		return ErrNoProblem
	}
	return o.submit(cur, api.NewObjectiveSubmission(cur, choice, fixAttempt))
}

// SubmitSubjective answers the current problem with free text.
func (o *Orchestrator) SubmitSubjective(written string) error {
	cur, ok := o.state.Current()
	if !ok {
		return ErrNoProblem
	}
	return o.submit(cur, api.NewSubjectiveSubmission(cur, written))
}

// Submit answers the current problem in the shape its kind requires.
func (o *Orchestrator) Submit(a Answer) error {
	cur, ok := o.state.Current()
	if !ok {
		return ErrNoProblem
	}
	if cur.Kind() == problem.KindSubjective {
		return o.SubmitSubjective(a.Text)
	}
	return o.SubmitObjective(a.Choice, a.Fix)
}

func (o *Orchestrator) submit(p problem.Problem, sub api.Submission) error {
	if !o.state.HasUser() {
		o.bus.Failure.Publish(events.Failure{Op: api.OpSubmitAnswer, Err: api.ErrNoUser})
		return api.ErrNoUser
	}

	epoch := o.state.Epoch
	o.gw.SubmitAnswer(sub, o.state.User, func(correct bool, err error) {
		if epoch != o.state.Epoch {
			o.logger.Info().Int("problem_id", p.ID).Msg("dropping verdict for a replaced problem set")
			return
		}
		if o.finished {
			o.logger.Info().Int("problem_id", p.ID).Msg("dropping verdict for a finished problem set")
			return
		}
		if err != nil {
			o.logger.Error().Err(err).Int("problem_id", p.ID).Msg("answer submission failed")
			o.bus.Failure.Publish(events.Failure{Op: api.OpSubmitAnswer, Err: err})
			return
		}
		o.state.RecordAnswer(p, correct)
		o.bus.AnswerResult.Publish(events.AnswerResult{ProblemID: p.ID, Correct: correct})
	})
	return nil
}

// GoToNextProblem advances to the next problem, or ends the set and moves
// to Result when the current problem is the last.
func (o *Orchestrator) GoToNextProblem() {
	if o.state.Total() == 0 {
		o.logger.Warn().Msg("no problem set loaded, ignoring next")
		return
	}
	if o.state.Advance() {
		o.publishCurrent()
		return
	}
	o.finish()
}

// ResetGameState clears the user, the set and all progress, stops any
// pending acquisition and returns to Title.
func (o *Orchestrator) ResetGameState() {
	o.stopPending()
	o.state.Reset()
	o.clearFailure()
	o.lastSummary = nil
	o.finished = false
	o.logger.Info().Msg("game state reset")
	o.phases.Set(phase.Title)
}

// SetGamePhase requests an explicit transition. Entering Result this way
// closes the current set like GoToNextProblem would.
func (o *Orchestrator) SetGamePhase(p phase.Phase) bool {
	if p == phase.Result && o.state.Total() > 0 {
		before := o.phases.Current()
		o.finish()
		return before != phase.Result && o.phases.Current() == phase.Result
	}
	return o.phases.Set(p)
}

// finish summarizes and records the set once, then moves to Result.
func (o *Orchestrator) finish() {
	if o.finished {
		o.phases.Set(phase.Result)
		return
	}
	o.finished = true
	o.lastSummary = session.BuildSummary(o.state, o.now())
	o.logger.Info().
		Str("session_id", o.lastSummary.SessionID).
		Int("correct", o.lastSummary.Correct).
		Int("answered", o.lastSummary.Answered).
		Int("total", o.lastSummary.Total).
		Msg("problem set finished")

	if o.recorder != nil {
		if err := o.recorder.Record(context.Background(), o.lastSummary); err != nil {
			o.logger.Error().Err(err).Msg("recording session summary failed")
		}
	}
	o.phases.Set(phase.Result)
}

func (o *Orchestrator) publishCurrent() {
	cur, ok := o.state.Current()
	if !ok {
		return
	}
	o.bus.ProblemChanged.Publish(events.ProblemChanged{
		Index:   o.state.Index,
		Total:   o.state.Total(),
		Problem: cur,
	})
}

func (o *Orchestrator) fail(op string, err error, st stage) {
	o.failed = st
	o.lastErr = err
	o.logger.Error().Err(err).Str("op", op).Msg("session stalled")
	o.bus.Failure.Publish(events.Failure{Op: op, Err: err})
}

func (o *Orchestrator) clearFailure() {
	o.failed = stageNone
	o.lastErr = nil
}

func (o *Orchestrator) stopPending() {
	o.poller.Cancel()
	if o.settle != nil {
		o.settle.Stop()
		o.settle = nil
	}
}

// opOf recovers the operation name carried by gateway errors.
func opOf(err error, fallback string) string {
	var te *api.TransportError
	if errors.As(err, &te) {
		return te.Op
	}
	var inv *api.InvalidResponseError
	if errors.As(err, &inv) {
		return inv.Op
	}
	return fallback
}
