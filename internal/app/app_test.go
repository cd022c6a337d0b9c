package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coderush/internal/config"
	"github.com/abhisek/coderush/internal/loop"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/store"
)

const testSet = `[
	{"id": 1, "category": "OX", "title": "Nil maps", "description": "Writing to a nil map panics.", "choices": ["O", "X"]},
	{"id": "2", "category": "BUGFIX", "title": "Off by one", "description": "Fix it\n` + "```go\\nfor i := 0; i <= n; i++ {}\\n```" + `", "choices": ["A", "B"]}
]`

type fakeServer struct {
	mu      sync.Mutex
	submits []string
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7}`))
	})
	mux.HandleFunc("GET /api/problems/set", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testSet))
	})
	mux.HandleFunc("POST /api/submit/{category}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.submits = append(f.submits, r.PathValue("category")+" "+string(body))
		n := len(f.submits)
		f.mu.Unlock()
		// First answer right, the rest wrong.
		fmt.Fprint(w, n == 1)
	})
	return mux
}

// harness feeds posted completions through AppModel.Update, the way the
// program dispatcher does.
type harness struct {
	t     *testing.T
	m     *AppModel
	posts chan tea.Msg
}

func newHarness(t *testing.T, srv *httptest.Server, repo store.SessionRepo) *harness {
	t.Helper()
	h := &harness{t: t, posts: make(chan tea.Msg, 32)}
	d := loop.DispatcherFunc(func(fn func()) { h.posts <- dispatchMsg{fn: fn} })

	cfg := &config.Config{
		Server: config.Server{URL: srv.URL, RequestTimeout: 5 * time.Second},
		Game: config.Game{
			Nickname:     "neo",
			PollInterval: time.Second,
		},
	}
	m, err := New(Options{Config: cfg, Logger: zerolog.Nop(), History: repo}, d)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	h.m = m
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func (h *harness) key(k tea.KeyPressMsg) {
	h.t.Helper()
	h.m.Update(k)
}

func (h *harness) pump(n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		select {
		case msg := <-h.posts:
			h.m.Update(msg)
		case <-time.After(5 * time.Second):
			h.t.Fatalf("timed out waiting for completion %d of %d", i+1, n)
		}
	}
}

func runeKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

var enter = tea.KeyPressMsg{Code: tea.KeyEnter}

func TestFullSessionThroughTheProgram(t *testing.T) {
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler())
	defer srv.Close()

	st, err := store.Open("file:app_full_session?mode=memory&cache=shared")
	require.NoError(t, err)
	defer st.Close()

	h := newHarness(t, srv, st.SessionRepo())
	assert.Equal(t, phase.Title, h.m.Phase())

	h.key(runeKey('p'))
	require.Equal(t, phase.Lobby, h.m.Phase())

	// Nickname is prefilled from config.
	h.key(enter)
	require.Equal(t, phase.Loading, h.m.Phase())

	// user created, settle timer, problem set
	h.pump(3)
	require.Equal(t, phase.InGame, h.m.Phase())
	assert.Equal(t, 2, h.m.Game().Snapshot().Total)

	assert.Contains(t, h.m.render(), "Nil maps")

	// Answer the first problem with choice A.
	h.key(enter)
	h.pump(1)
	snap := h.m.Game().Snapshot()
	assert.Equal(t, 1, snap.Correct)
	assert.Equal(t, 1, snap.Answered)

	h.key(runeKey('n'))
	assert.Equal(t, 1, h.m.Game().Snapshot().Index)

	// Bugfix: choose B, then type a fix.
	h.key(tea.KeyPressMsg{Code: tea.KeyDown})
	h.key(tea.KeyPressMsg{Code: tea.KeyTab})
	for _, r := range "i < n" {
		h.key(runeKey(r))
	}
	h.key(enter)
	h.pump(1)
	assert.Equal(t, 2, h.m.Game().Snapshot().Answered)

	h.key(runeKey('n'))
	require.Equal(t, phase.Result, h.m.Phase())

	sum := h.m.Game().LastSummary()
	require.NotNil(t, sum)
	assert.Equal(t, 1, sum.Correct)
	assert.Len(t, sum.Missed, 1)
	assert.Contains(t, h.m.render(), "Set complete!")

	fs.mu.Lock()
	require.Len(t, fs.submits, 2)
	assert.True(t, strings.HasPrefix(fs.submits[0], "ox "), fs.submits[0])
	assert.True(t, strings.HasPrefix(fs.submits[1], "bugfix "), fs.submits[1])
	assert.Contains(t, fs.submits[1], "i < n")
	fs.mu.Unlock()

	records, err := st.SessionRepo().RecentSessions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "neo", records[0].Nickname)

	// Back to the title.
	h.key(runeKey('t'))
	assert.Equal(t, phase.Title, h.m.Phase())
}

func TestFailedFetchOffersRetry(t *testing.T) {
	var mu sync.Mutex
	failing := true
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7}`))
	})
	mux.HandleFunc("GET /api/problems/set", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(testSet))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := newHarness(t, srv, nil)
	h.key(runeKey('p'))
	h.key(enter)
	h.pump(3)

	require.Equal(t, phase.Loading, h.m.Phase())
	assert.True(t, h.m.Game().CanRetry())
	assert.Contains(t, h.m.render(), "HTTP 503")

	mu.Lock()
	failing = false
	mu.Unlock()

	h.key(runeKey('r'))
	h.pump(1)
	assert.Equal(t, phase.InGame, h.m.Phase())
}

func TestCtrlCQuits(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	h := newHarness(t, srv, nil)

	_, cmd := h.m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestNewFallsBackToDefaultConfig(t *testing.T) {
	m, err := New(Options{Logger: zerolog.Nop()}, loop.DispatcherFunc(func(func()) {}))
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, phase.Title, m.Phase())
}
