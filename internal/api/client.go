package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/abhisek/coderush/internal/metrics"
	"github.com/abhisek/coderush/internal/problem"
)

// Operation names used in errors, logs and metrics.
const (
	OpCreateUser        = "create_user"
	OpGetProblemSet     = "get_problem_set"
	OpRequestGeneration = "request_generation"
	OpPollResult        = "poll_result"
	OpSubmitAnswer      = "submit_answer"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 60 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// UserID is the server-assigned user handle. The server sends an integer
// or a string; both are kept in their textual form.
type UserID string

// PollStatus is the outcome of one generation poll.
type PollStatus int

const (
	// PollPending means the server is still generating (HTTP 204).
	PollPending PollStatus = iota
	// PollReady means the body carries the problem set (HTTP 200).
	PollReady
)

func (s PollStatus) String() string {
	if s == PollReady {
		return "ready"
	}
	return "pending"
}

// PollResult is the result of PollGenerationResult.
type PollResult struct {
	Status   PollStatus
	Problems []problem.Problem
}

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
	Metrics    *metrics.Set
}

// Client talks to the CodeRush REST backend. Every method blocks until the
// response is read or ctx is done; none of them retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *metrics.Set
}

// NewClient creates a Client for the backend at baseURL
// (e.g. "http://localhost:8080"). The "/api" prefix is added if missing.
func NewClient(baseURL string, opts Options) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/api") {
		baseURL += "/api"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
}

// BaseURL returns the API root including the "/api" prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateUser registers nickname and returns the server-assigned id.
func (c *Client) CreateUser(ctx context.Context, nickname string) (UserID, error) {
	resp, err := c.do(ctx, OpCreateUser, http.MethodPost, "/users", map[string]any{"nickname": nickname})
	if err != nil {
		return "", err
	}
	if err := resp.expect2xx(OpCreateUser); err != nil {
		return "", err
	}

	id := gjson.GetBytes(resp.body, "id")
	var userID UserID
	switch id.Type {
	case gjson.Number:
		userID = UserID(id.Raw)
	case gjson.String:
		userID = UserID(strings.TrimSpace(id.Str))
	}
	if userID == "" {
		return "", resp.invalid(OpCreateUser, errors.New("response has no user id"))
	}
	c.logger.Info().Str("op", OpCreateUser).Str("user_id", string(userID)).Msg("user created")
	return userID, nil
}

// GetProblemSet fetches a ready-made problem set.
func (c *Client) GetProblemSet(ctx context.Context) ([]problem.Problem, error) {
	resp, err := c.do(ctx, OpGetProblemSet, http.MethodGet, "/problems/set", nil)
	if err != nil {
		return nil, err
	}
	if err := resp.expect2xx(OpGetProblemSet); err != nil {
		return nil, err
	}
	return c.parseProblemSet(OpGetProblemSet, resp)
}

// RequestProblemGeneration asks the server to generate a problem set and
// returns the request id to poll.
func (c *Client) RequestProblemGeneration(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, OpRequestGeneration, http.MethodPost, "/problems/request", map[string]any{})
	if err != nil {
		return "", err
	}
	if err := resp.expect2xx(OpRequestGeneration); err != nil {
		return "", err
	}

	var requestID string
	for _, key := range []string{"requestId", "request_id"} {
		v := gjson.GetBytes(resp.body, key)
		if v.Type == gjson.String || v.Type == gjson.Number {
			requestID = strings.TrimSpace(v.String())
			break
		}
	}
	if requestID == "" {
		return "", resp.invalid(OpRequestGeneration, errors.New("response has no request id"))
	}
	return requestID, nil
}

// PollGenerationResult checks a generation request. HTTP 200 yields the
// problem set, HTTP 204 means not ready, and anything else is an error.
func (c *Client) PollGenerationResult(ctx context.Context, requestID string) (PollResult, error) {
	path := "/problems/result/" + url.PathEscape(requestID)
	resp, err := c.do(ctx, OpPollResult, http.MethodGet, path, nil)
	if err != nil {
		return PollResult{}, err
	}

	switch resp.status {
	case http.StatusNoContent:
		return PollResult{Status: PollPending}, nil
	case http.StatusOK:
		problems, err := c.parseProblemSet(OpPollResult, resp)
		if err != nil {
			return PollResult{}, err
		}
		return PollResult{Status: PollReady, Problems: problems}, nil
	default:
		return PollResult{}, resp.invalid(OpPollResult, nil)
	}
}

// SubmitAnswer posts sub for user and reports the server's verdict. The
// verdict is true only when the body is exactly "true", ignoring case.
func (c *Client) SubmitAnswer(ctx context.Context, sub Submission, user UserID) (bool, error) {
	if user == "" {
		return false, ErrNoUser
	}
	category := strings.ToLower(strings.TrimSpace(sub.Category))
	if category == "" {
		return false, ErrEmptyCategory
	}

	query := url.Values{}
	query.Set("userId", string(user))
	path := fmt.Sprintf("/submit/%s?%s", url.PathEscape(category), query.Encode())

	resp, err := c.do(ctx, OpSubmitAnswer, http.MethodPost, path, sub.Body())
	if err != nil {
		return false, err
	}
	if err := resp.expect2xx(OpSubmitAnswer); err != nil {
		return false, err
	}

	correct := strings.EqualFold(string(resp.body), "true")
	c.metrics.ObserveAnswer(correct)
	c.logger.Info().
		Str("op", OpSubmitAnswer).
		Int("problem_id", sub.ProblemID).
		Bool("correct", correct).
		Msg("answer judged")
	return correct, nil
}

func (c *Client) parseProblemSet(op string, resp *response) ([]problem.Problem, error) {
	problems, skipped, err := problem.NormalizeSet(resp.body)
	if err != nil {
		return nil, resp.invalid(op, err)
	}
	for _, s := range skipped {
		c.logger.Warn().Str("op", op).Err(s).Msg("skipping malformed problem")
	}
	c.metrics.ObserveSkipped(len(skipped))
	c.logger.Info().Str("op", op).Int("count", len(problems)).Int("skipped", len(skipped)).Msg("problem set parsed")
	return problems, nil
}

// response is a fully read HTTP response.
type response struct {
	status      int
	contentType string
	body        []byte
}

func (r *response) expect2xx(op string) error {
	if r.status < 200 || r.status >= 300 {
		return r.invalid(op, nil)
	}
	return nil
}

func (r *response) invalid(op string, cause error) error {
	return &InvalidResponseError{Op: op, StatusCode: r.status, Body: string(r.body), Err: cause}
}

// do sends one JSON request and reads the whole response.
func (c *Client) do(ctx context.Context, op, method, path string, body any) (*response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("op", op).Str("method", method).Str("url", req.URL.String()).Msg("sending request")

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(op, "transport_error", time.Since(start))
		c.logger.Error().Str("op", op).Err(err).Msg("request failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	latency := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(op, "transport_error", latency)
		c.logger.Error().Str("op", op).Err(err).Msg("reading response failed")
		return nil, &TransportError{Op: op, Err: err}
	}

	c.metrics.ObserveRequest(op, strconv.Itoa(httpResp.StatusCode), latency)
	c.logger.Debug().
		Str("op", op).
		Int("status", httpResp.StatusCode).
		Str("content_type", httpResp.Header.Get("Content-Type")).
		Dur("latency", latency).
		Str("body", string(raw)).
		Msg("response received")

	return &response{
		status:      httpResp.StatusCode,
		contentType: httpResp.Header.Get("Content-Type"),
		body:        raw,
	}, nil
}
