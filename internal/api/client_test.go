package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coderush/internal/metrics"
	"github.com/abhisek/coderush/internal/problem"
)

// recordedRequest captures what the fake backend saw.
type recordedRequest struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        map[string]any
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest, *metrics.Set) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
		seen = append(seen, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	m := metrics.New(prometheus.NewRegistry())
	c := NewClient(srv.URL, Options{Logger: zerolog.Nop(), Metrics: m})
	return c, &seen, m
}

func TestNewClientAddsAPIPrefixOnce(t *testing.T) {
	assert.Equal(t, "http://host:8080/api", NewClient("http://host:8080", Options{}).BaseURL())
	assert.Equal(t, "http://host:8080/api", NewClient("http://host:8080/", Options{}).BaseURL())
	assert.Equal(t, "http://host:8080/api", NewClient("http://host:8080/api/", Options{}).BaseURL())
}

func TestCreateUser(t *testing.T) {
	c, seen, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 17, "nickname": "neo"}`))
	})

	id, err := c.CreateUser(context.Background(), "neo")
	require.NoError(t, err)
	assert.Equal(t, UserID("17"), id)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/users", req.Path)
	assert.Equal(t, "application/json", req.ContentType)
	assert.Equal(t, map[string]any{"nickname": "neo"}, req.Body)
}

func TestCreateUserStringID(t *testing.T) {
	c, _, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "u-9"}`))
	})
	id, err := c.CreateUser(context.Background(), "neo")
	require.NoError(t, err)
	assert.Equal(t, UserID("u-9"), id)
}

func TestCreateUserInvalidResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"id": 1}`},
		{"missing id", http.StatusOK, `{"nickname": "neo"}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.CreateUser(context.Background(), "neo")
			var inv *InvalidResponseError
			require.True(t, errors.As(err, &inv), "got %v", err)
			assert.Equal(t, tt.status, inv.StatusCode)
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, Options{Logger: zerolog.Nop()})
	_, err := c.GetProblemSet(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, OpGetProblemSet, te.Op)
}

func TestGetProblemSet(t *testing.T) {
	c, seen, m := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "1", "category": "BUGFIX", "title": "Off by one", "description": "Fix the loop 코드: for i := 0; i <= n; i++ {}"},
			42,
			{"id": 2, "category": "MULTIPLE_CHOICE", "title": "Pick", "choices": ["a", "b"], "answer": "b"}
		]`))
	})

	problems, err := c.GetProblemSet(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 2)

	assert.Equal(t, 1, problems[0].ID)
	assert.Equal(t, "Fix the loop", problems[0].Description)
	assert.Equal(t, "for i := 0; i <= n; i++ {}", problems[0].TargetSnippet)
	assert.Equal(t, []string{"a", "b"}, problems[1].Choices)

	assert.Equal(t, http.MethodGet, (*seen)[0].Method)
	assert.Equal(t, "/api/problems/set", (*seen)[0].Path)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Skipped))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues(OpGetProblemSet, "200")))
}

func TestGetProblemSetNotArray(t *testing.T) {
	c, _, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "nope"}`))
	})
	_, err := c.GetProblemSet(context.Background())

	var inv *InvalidResponseError
	require.True(t, errors.As(err, &inv))
	assert.ErrorIs(t, err, problem.ErrNotArray)
}

func TestRequestProblemGeneration(t *testing.T) {
	c, seen, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"requestId": "gen-123"}`))
	})
	id, err := c.RequestProblemGeneration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gen-123", id)
	assert.Equal(t, http.MethodPost, (*seen)[0].Method)
	assert.Equal(t, "/api/problems/request", (*seen)[0].Path)
}

func TestRequestProblemGenerationMissingID(t *testing.T) {
	c, _, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	_, err := c.RequestProblemGeneration(context.Background())
	var inv *InvalidResponseError
	assert.True(t, errors.As(err, &inv))
}

func TestPollGenerationResult(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus PollStatus
		wantCount  int
		wantErr    bool
	}{
		{"not ready", http.StatusNoContent, "", PollPending, 0, false},
		{"ready", http.StatusOK, `[{"id": 1}, {"id": 2}]`, PollReady, 2, false},
		{"gone", http.StatusNotFound, `{"error": "unknown request"}`, 0, 0, true},
		{"accepted is not ready", http.StatusAccepted, ``, 0, 0, true},
		{"ready but garbage", http.StatusOK, `garbage`, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, seen, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			res, err := c.PollGenerationResult(context.Background(), "gen-1")
			assert.Equal(t, "/api/problems/result/gen-1", (*seen)[0].Path)
			if tt.wantErr {
				var inv *InvalidResponseError
				require.True(t, errors.As(err, &inv), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Len(t, res.Problems, tt.wantCount)
		})
	}
}

func TestSubmitAnswerVerdict(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"false", false},
		{"", false},
		{`{"correct": true}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			c, _, m := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			sub := NewObjectiveSubmission(problem.Problem{ID: 3, Category: "MULTIPLE_CHOICE"}, "b", "")
			got, err := c.SubmitAnswer(context.Background(), sub, "7")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			verdict := "incorrect"
			if tt.want {
				verdict = "correct"
			}
			assert.Equal(t, float64(1), testutil.ToFloat64(m.Answers.WithLabelValues(verdict)))
		})
	}
}

func TestSubmitAnswerRouting(t *testing.T) {
	c, seen, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("true"))
	})

	sub := NewObjectiveSubmission(problem.Problem{ID: 3, Category: "BUGFIX", TargetSnippet: "x := 1"}, "b", "x := 2")
	_, err := c.SubmitAnswer(context.Background(), sub, "7")
	require.NoError(t, err)

	req := (*seen)[0]
	assert.Equal(t, "/api/submit/bugfix", req.Path)
	assert.Equal(t, "userId=7", req.Query)
	assert.Equal(t, map[string]any{
		"problemId":      float64(3),
		"selectedChoice": "b",
		"targetSnippet":  "x := 1",
		"fixAttempt":     "x := 2",
	}, req.Body)
}

func TestSubmitAnswerFailures(t *testing.T) {
	c, seen, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	p := problem.Problem{ID: 1, Category: "SUBJECTIVE"}

	_, err := c.SubmitAnswer(context.Background(), NewSubjectiveSubmission(p, "answer"), "")
	assert.ErrorIs(t, err, ErrNoUser)

	_, err = c.SubmitAnswer(context.Background(), NewSubjectiveSubmission(problem.Problem{ID: 1}, "answer"), "7")
	assert.ErrorIs(t, err, ErrEmptyCategory)

	assert.Empty(t, *seen, "no request should be sent before validation passes")

	_, err = c.SubmitAnswer(context.Background(), NewSubjectiveSubmission(p, "answer"), "7")
	var inv *InvalidResponseError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, http.StatusBadGateway, inv.StatusCode)
}
