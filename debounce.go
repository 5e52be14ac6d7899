package actionz

import (
	"time"
)

// Debounce emits items only after a quiet period with no new items.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Debounce[T any] struct {
	name     string
	duration time.Duration
}

// NewDebounce creates an operator that delays and coalesces rapid events.
// Only the last item in a rapid sequence is emitted, duration after it
// arrived.
//
// When to use:
//   - Search-as-you-type input
//   - Resize or scroll notifications
//   - Preventing excessive lookups from UI events
//
// Example:
//
//	// Only pass typed text after 300ms of no typing
//	debounce := actionz.NewDebounce[string](300 * time.Millisecond)
//
// Parameters:
//   - duration: The quiet period before emitting an item
func NewDebounce[T any](duration time.Duration) *Debounce[T] {
	return &Debounce[T]{
		duration: duration,
		name:     "debounce",
	}
}

// Bind implements Operator.
func (d *Debounce[T]) Bind(s *Scope, next func(T)) func(T) {
	var timer Timer
	var pending T

	return func(item T) {
		pending = item
		s.Stop(timer)
		timer = s.AfterFunc(d.duration, func() {
			timer = nil
			next(pending)
		})
	}
}

// Name returns the operator name.
func (d *Debounce[T]) Name() string {
	return d.name
}
