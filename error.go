package actionz

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoBaseURL is returned by AttachFetch when the config has no BaseURL.
	ErrNoBaseURL = errors.New("fetch pipeline requires a base URL")

	// ErrInvalidJSON marks a response body that is not valid JSON.
	ErrInvalidJSON = errors.New("response body is not valid JSON")
)

// HTTPStatusError reports a non-2xx HTTP response.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

// StreamError represents an error that occurred while processing an item.
// It captures both the item and the error so a failure can flow down a
// chain as data.
//
//nolint:govet // fieldalignment: struct layout optimized for readability over memory
type StreamError[T any] struct {
	// Item is the item being processed when the error occurred.
	Item T

	// Err is the underlying error.
	Err error

	// ProcessorName identifies which stage generated the error.
	ProcessorName string

	// Timestamp records when the error occurred.
	Timestamp time.Time
}

// NewStreamError creates a new StreamError with the current timestamp.
func NewStreamError[T any](item T, err error, processorName string) *StreamError[T] {
	return &StreamError[T]{
		Item:          item,
		Err:           err,
		ProcessorName: processorName,
		Timestamp:     time.Now(),
	}
}

// String returns a human-readable representation of the error.
func (se *StreamError[T]) String() string {
	return fmt.Sprintf("%s error: %v (item: %v, time: %s)",
		se.ProcessorName, se.Err, se.Item, se.Timestamp.Format(time.RFC3339))
}

// Unwrap returns the underlying error, enabling error wrapping chains.
func (se *StreamError[T]) Unwrap() error {
	return se.Err
}

// Error implements the error interface.
func (se *StreamError[T]) Error() string {
	return se.String()
}
