// Package gateway turns the blocking API client into fire-and-forget calls
// whose completions run on the session's dispatcher.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/loop"
	"github.com/abhisek/coderush/internal/problem"
)

// Backend is the blocking surface of the REST API. *api.Client implements it.
type Backend interface {
	CreateUser(ctx context.Context, nickname string) (api.UserID, error)
	GetProblemSet(ctx context.Context) ([]problem.Problem, error)
	RequestProblemGeneration(ctx context.Context) (string, error)
	PollGenerationResult(ctx context.Context, requestID string) (api.PollResult, error)
	SubmitAnswer(ctx context.Context, sub api.Submission, user api.UserID) (bool, error)
}

var _ Backend = (*api.Client)(nil)

// Gateway issues network operations without blocking. Each call returns
// immediately; done runs exactly once, on the dispatcher, with either a
// result or an error.
type Gateway interface {
	CreateUser(nickname string, done func(api.UserID, error))
	GetProblemSet(done func([]problem.Problem, error))
	RequestProblemGeneration(done func(string, error))
	PollGenerationResult(requestID string, done func(api.PollResult, error))
	SubmitAnswer(sub api.Submission, user api.UserID, done func(bool, error))
}

// Options configures an Async gateway.
type Options struct {
	// Timeout bounds each call. Zero means api.DefaultTimeout.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Async runs each call on its own goroutine and posts the completion to a
// dispatcher.
type Async struct {
	backend Backend
	d       loop.Dispatcher
	timeout time.Duration
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ Gateway = (*Async)(nil)

// NewAsync creates an Async gateway over backend.
func NewAsync(backend Backend, d loop.Dispatcher, opts Options) *Async {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Async{
		backend: backend,
		d:       d,
		timeout: timeout,
		logger:  opts.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close cancels in-flight calls and waits for their goroutines. Their
// completions are still posted, carrying a cancellation error.
func (a *Async) Close() {
	a.cancel()
	a.wg.Wait()
}

func (a *Async) CreateUser(nickname string, done func(api.UserID, error)) {
	a.run(api.OpCreateUser, func(ctx context.Context) func() {
		id, err := a.backend.CreateUser(ctx, nickname)
		return func() { done(id, err) }
	})
}

func (a *Async) GetProblemSet(done func([]problem.Problem, error)) {
	a.run(api.OpGetProblemSet, func(ctx context.Context) func() {
		problems, err := a.backend.GetProblemSet(ctx)
		return func() { done(problems, err) }
	})
}

func (a *Async) RequestProblemGeneration(done func(string, error)) {
	a.run(api.OpRequestGeneration, func(ctx context.Context) func() {
		id, err := a.backend.RequestProblemGeneration(ctx)
		return func() { done(id, err) }
	})
}

func (a *Async) PollGenerationResult(requestID string, done func(api.PollResult, error)) {
	a.run(api.OpPollResult, func(ctx context.Context) func() {
		res, err := a.backend.PollGenerationResult(ctx, requestID)
		return func() { done(res, err) }
	})
}

func (a *Async) SubmitAnswer(sub api.Submission, user api.UserID, done func(bool, error)) {
	a.run(api.OpSubmitAnswer, func(ctx context.Context) func() {
		correct, err := a.backend.SubmitAnswer(ctx, sub, user)
		return func() { done(correct, err) }
	})
}

// run executes call off the dispatcher and posts the completion it returns.
func (a *Async) run(op string, call func(ctx context.Context) func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(a.ctx, a.timeout)
		defer cancel()

		a.logger.Debug().Str("op", op).Msg("dispatching request")
		a.d.Dispatch(call(ctx))
	}()
}
