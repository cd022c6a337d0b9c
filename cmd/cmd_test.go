package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coderush/internal/config"
	"github.com/abhisek/coderush/internal/logging"
	"github.com/abhisek/coderush/internal/problem"
	"github.com/abhisek/coderush/internal/store"
)

func withRuntime(t *testing.T, url string) {
	t.Helper()
	saved := rt
	cfg := config.DefaultConfig()
	cfg.Server.URL = url
	cfg.Server.RequestTimeout = 2 * time.Second
	cfg.Game.SettleDelay = 10 * time.Millisecond
	rt.cfg = cfg
	rt.logger = zerolog.Nop()
	rt.metrics = nil
	t.Cleanup(func() { rt = saved })
}

func TestFetchProblemSet(t *testing.T) {
	var nickname string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Nickname string `json:"nickname"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		nickname = body.Nickname
		w.Write([]byte(`{"id": 3}`))
	})
	mux.HandleFunc("GET /api/problems/set", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "category": "OX", "title": "Nil maps", "choices": ["O", "X"]}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withRuntime(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	problems, err := fetchProblemSet(ctx, "cli")
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "Nil maps", problems[0].Title)
	assert.Equal(t, "cli", nickname)
}

func TestFetchProblemSetReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	withRuntime(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := fetchProblemSet(ctx, "cli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestPrintProblems(t *testing.T) {
	var buf bytes.Buffer
	printProblems(&buf, []problem.Problem{
		{ID: 1, Category: "OX", Title: "Nil maps", Choices: []string{"O", "X"}},
		{ID: 2, Category: "BUGFIX", Title: "Off by one", TargetSnippet: "for i := 0; i <= n; i++ {}", Choices: []string{}},
	})

	out := buf.String()
	assert.Contains(t, out, "#1  [OX] Nil maps")
	assert.Contains(t, out, "A) O")
	assert.Contains(t, out, "B) X")
	assert.Contains(t, out, "    for i := 0; i <= n; i++ {}")
	assert.Contains(t, out, "2 problem(s)")
}

func TestPrintProblemsJSON(t *testing.T) {
	var buf bytes.Buffer
	in := []problem.Problem{{ID: 5, Category: "OX", Title: "Zero values", Choices: []string{"O", "X"}}}
	require.NoError(t, printProblemsJSON(&buf, in))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Zero values", decoded[0]["title"])
	assert.EqualValues(t, 5, decoded[0]["id"])
}

func TestPrintHistory(t *testing.T) {
	var empty bytes.Buffer
	printHistory(&empty, nil, false)
	if got := empty.String(); got != "No sessions recorded.\n" {
		t.Errorf("empty history = %q", got)
	}

	finished := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []store.SessionRecord{{
		Sequence:   4,
		SessionID:  "abc",
		Nickname:   "a-very-long-nickname-indeed",
		Total:      3,
		Answered:   3,
		Correct:    2,
		StartedAt:  finished.Add(-90 * time.Second),
		FinishedAt: finished,
		Missed:     []problem.Problem{{ID: 9, Category: "OX", Title: "Shadowing"}},
	}}

	var buf bytes.Buffer
	printHistory(&buf, records, true)
	out := buf.String()

	if !strings.Contains(out, "a-very-long-nick ") {
		t.Errorf("nickname not truncated:\n%s", out)
	}
	for _, want := range []string{"2/3", "67%", "1:30", "abc", "✗ #9 Shadowing (OX)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printHistory(&buf, records, false)
	if strings.Contains(buf.String(), "Shadowing") {
		t.Error("missed problems listed without --missed")
	}
}

func TestSetupAppliesFlagsBeforeValidation(t *testing.T) {
	saved := rt
	t.Cleanup(func() { rt = saved })
	t.Setenv("CODERUSH_SERVER_URL", "not a url")
	t.Setenv("CODERUSH_LOG_LEVEL", "debug")

	c := &cobra.Command{Use: "setup"}
	for _, name := range []string{"db", "server", "log-file", "log-level", "metrics-addr"} {
		c.Flags().String(name, "", "")
	}
	c.SetContext(context.Background())
	require.Error(t, setup(c))

	require.NoError(t, c.Flags().Set("server", "http://rush.example.com"))
	require.NoError(t, c.Flags().Set("log-file", "-"))
	require.NoError(t, setup(c))
	defer teardown()

	assert.Equal(t, "http://rush.example.com", rt.cfg.Server.URL)
	assert.Equal(t, zerolog.DebugLevel, logging.FromContext(c.Context()).GetLevel())
}
