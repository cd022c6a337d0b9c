package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/loop"
	"github.com/abhisek/coderush/internal/problem"
)

// blockingBackend records calls and waits on release before returning.
type blockingBackend struct {
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingBackend) wait(ctx context.Context) error {
	b.calls.Add(1)
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingBackend) CreateUser(ctx context.Context, nickname string) (api.UserID, error) {
	if err := b.wait(ctx); err != nil {
		return "", err
	}
	return api.UserID("user-" + nickname), nil
}

func (b *blockingBackend) GetProblemSet(ctx context.Context) ([]problem.Problem, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return []problem.Problem{{ID: 1}}, nil
}

func (b *blockingBackend) RequestProblemGeneration(ctx context.Context) (string, error) {
	return "req", b.wait(ctx)
}

func (b *blockingBackend) PollGenerationResult(ctx context.Context, id string) (api.PollResult, error) {
	return api.PollResult{Status: api.PollPending}, b.wait(ctx)
}

func (b *blockingBackend) SubmitAnswer(ctx context.Context, sub api.Submission, user api.UserID) (bool, error) {
	return true, b.wait(ctx)
}

func TestCompletionRunsOnDispatcher(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{})}
	var d loop.Manual
	gw := NewAsync(backend, &d, Options{Logger: zerolog.Nop()})
	defer gw.Close()

	var got api.UserID
	called := 0
	gw.CreateUser("neo", func(id api.UserID, err error) {
		called++
		got = id
		assert.NoError(t, err)
	})

	// The call returns before the backend answers.
	require.Eventually(t, func() bool { return backend.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, d.Pending())
	assert.Equal(t, 0, called)

	close(backend.release)
	require.Eventually(t, func() bool { return d.Pending() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, called, "completion must wait for the dispatcher")

	d.RunPending()
	assert.Equal(t, 1, called)
	assert.Equal(t, api.UserID("user-neo"), got)
}

func TestTimeoutReportsError(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{})}
	var d loop.Manual
	gw := NewAsync(backend, &d, Options{Timeout: 10 * time.Millisecond, Logger: zerolog.Nop()})
	defer gw.Close()

	var gotErr error
	gw.GetProblemSet(func(_ []problem.Problem, err error) { gotErr = err })

	require.Eventually(t, func() bool { return d.Pending() == 1 }, time.Second, time.Millisecond)
	d.RunPending()
	assert.ErrorIs(t, gotErr, context.DeadlineExceeded)
}

func TestCloseCancelsInFlight(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{})}
	var d loop.Manual
	gw := NewAsync(backend, &d, Options{Logger: zerolog.Nop()})

	var gotErr error
	gw.SubmitAnswer(api.Submission{Category: "BUGFIX"}, "7", func(_ bool, err error) { gotErr = err })
	require.Eventually(t, func() bool { return backend.calls.Load() == 1 }, time.Second, time.Millisecond)

	gw.Close()
	d.RunPending()
	assert.ErrorIs(t, gotErr, context.Canceled)
}

func TestAsyncOverHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/problems/result/abc":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	l := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	client := api.NewClient(srv.URL, api.Options{Logger: zerolog.Nop()})
	gw := NewAsync(client, l, Options{Logger: zerolog.Nop()})
	defer gw.Close()

	pending := make(chan api.PollResult, 1)
	gw.PollGenerationResult("abc", func(res api.PollResult, err error) {
		assert.NoError(t, err)
		pending <- res
	})

	failed := make(chan error, 1)
	gw.RequestProblemGeneration(func(_ string, err error) { failed <- err })

	select {
	case res := <-pending:
		assert.Equal(t, api.PollPending, res.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("poll completion never arrived")
	}

	select {
	case err := <-failed:
		var inv *api.InvalidResponseError
		assert.True(t, errors.As(err, &inv))
	case <-time.After(5 * time.Second):
		t.Fatal("request completion never arrived")
	}
}
