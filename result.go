package actionz

import (
	"fmt"
	"time"
)

// Result represents either a successful value or an error. Fetchers return
// a Result instead of a Go error so a failed request can travel down a chain
// as an ordinary item without terminating it.
type Result[T any] struct {
	value    T
	err      *StreamError[T]
	metadata map[string]any
}

// Metadata keys set by the HTTP fetcher.
const (
	MetadataTarget   = "target"   // string - request target
	MetadataDuration = "duration" // time.Duration - request round trip
	MetadataStatus   = "status"   // int - HTTP status code, when a response arrived
)

// NewSuccess creates a Result containing a successful value.
func NewSuccess[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// NewError creates a Result containing an error.
func NewError[T any](item T, err error, processorName string) Result[T] {
	return Result[T]{value: item, err: NewStreamError(item, err, processorName)}
}

// IsError returns true if this Result contains an error.
func (r Result[T]) IsError() bool {
	return r.err != nil
}

// IsSuccess returns true if this Result contains a successful value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the successful value.
// Panics if called on a Result containing an error - check IsSuccess first.
func (r Result[T]) Value() T {
	if r.err != nil {
		panic("called Value() on Result containing an error")
	}
	return r.value
}

// Error returns the StreamError, or nil for a successful Result.
func (r Result[T]) Error() *StreamError[T] {
	return r.err
}

// ValueOr returns the successful value if present, otherwise fallback.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// WithMetadata returns a copy of r with key set to value. The original is
// unchanged. Empty keys are ignored.
func (r Result[T]) WithMetadata(key string, value any) Result[T] {
	if key == "" {
		return r
	}

	metadata := make(map[string]any, len(r.metadata)+1)
	for k, v := range r.metadata {
		metadata[k] = v
	}
	metadata[key] = value

	return Result[T]{
		value:    r.value,
		err:      r.err,
		metadata: metadata,
	}
}

// GetMetadata retrieves a metadata value by key.
func (r Result[T]) GetMetadata(key string) (any, bool) {
	if r.metadata == nil {
		return nil, false
	}
	value, exists := r.metadata[key]
	return value, exists
}

// GetDurationMetadata retrieves time.Duration metadata.
// Returns: (value, found, error)
//   - found=false, error=nil: key not present
//   - found=false, error!=nil: key present but wrong type
//   - found=true, error=nil: successful retrieval.
func (r Result[T]) GetDurationMetadata(key string) (time.Duration, bool, error) {
	value, exists := r.GetMetadata(key)
	if !exists {
		return 0, false, nil
	}
	d, ok := value.(time.Duration)
	if !ok {
		return 0, false, fmt.Errorf("metadata key %q has type %T, expected time.Duration", key, value)
	}
	return d, true, nil
}
