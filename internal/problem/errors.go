package problem

import (
	"errors"
	"fmt"
)

// ErrNotArray is returned by NormalizeSet when the body holds no problem array.
var ErrNotArray = errors.New("problem set body is not a JSON array")

// MalformedProblemError reports a single array element that could not be
// normalized. The element is skipped; the rest of the batch is kept.
type MalformedProblemError struct {
	// Index is the element position in the server array, or -1 when the
	// element was normalized on its own.
	Index int
	Raw   string
	Err   error
}

func (e *MalformedProblemError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed problem: %v", e.Err)
	}
	return fmt.Sprintf("malformed problem at index %d: %v", e.Index, e.Err)
}

func (e *MalformedProblemError) Unwrap() error { return e.Err }
