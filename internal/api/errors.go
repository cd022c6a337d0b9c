package api

import (
	"errors"
	"fmt"
)

// ErrNoUser is returned when an answer is submitted before a user exists.
var ErrNoUser = errors.New("no user registered for this session")

// ErrEmptyCategory is returned when a submission has no category to route on.
var ErrEmptyCategory = errors.New("submission category is empty")

// TransportError indicates the request never completed: dial failure,
// timeout, or a connection dropped before a response arrived.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvalidResponseError indicates the server answered with an unexpected
// status or a body that could not be parsed.
type InvalidResponseError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *InvalidResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid response (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: invalid response (HTTP %d)", e.Op, e.StatusCode)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }
