package actionz

import (
	"time"
)

// Throttle lets the first item of every window through and drops the rest.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Throttle[T any] struct {
	name     string
	duration time.Duration
}

// NewThrottle creates a leading-edge throttle. An item passes immediately
// when no item has passed within the last duration; items arriving during
// the cooling period are dropped. A zero duration passes everything.
//
// When to use:
//   - Pointer movement tracking
//   - Scroll position sampling
//   - Capping how often a handler can run
//
// Example:
//
//	// At most one pointer event every 100ms
//	throttle := actionz.NewThrottle[any](100 * time.Millisecond)
//
// Parameters:
//   - duration: The cooling period after each emitted item
func NewThrottle[T any](duration time.Duration) *Throttle[T] {
	return &Throttle[T]{
		duration: duration,
		name:     "throttle",
	}
}

// Bind implements Operator.
func (t *Throttle[T]) Bind(s *Scope, next func(T)) func(T) {
	var last time.Time
	var emitted bool

	return func(item T) {
		now := s.Now()
		if emitted && now.Sub(last) < t.duration {
			return
		}
		emitted = true
		last = now
		next(item)
	}
}

// Name returns the operator name.
func (t *Throttle[T]) Name() string {
	return t.name
}
