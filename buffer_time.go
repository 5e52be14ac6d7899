package actionz

import (
	"time"
)

// BufferTime groups items into fixed, non-overlapping time windows.
type BufferTime[T any] struct {
	name string
	size time.Duration
}

// NewBufferTime creates an operator that collects items and emits the
// collected slice at the end of every window, in arrival order. Windows
// start when the operator is bound and tick regardless of traffic, so an
// idle window emits an empty slice; follow it with a filter when empty
// windows are unwanted. The open window is discarded when the scope closes.
//
// When to use:
//   - Batching pointer movement for a periodic redraw
//   - Rate calculations over fixed intervals
//
// Example:
//
//	// Collect pointer events every 500ms, ignoring idle windows
//	batches := actionz.Pipe[any, []any, []any](
//		actionz.NewBufferTime[any](500*time.Millisecond),
//		actionz.NewFilter(func(b []any) bool { return len(b) > 0 }),
//	)
//
// Parameters:
//   - size: Duration of each window
func NewBufferTime[T any](size time.Duration) *BufferTime[T] {
	return &BufferTime[T]{
		size: size,
		name: "buffer-time",
	}
}

// Bind implements Operator. It must be called from a scope callback because
// it arms the first window.
func (b *BufferTime[T]) Bind(s *Scope, next func([]T)) func(T) {
	var window []T

	var tick func()
	tick = func() {
		batch := window
		window = nil
		s.AfterFunc(b.size, tick)
		next(batch)
	}
	s.AfterFunc(b.size, tick)

	return func(item T) {
		window = append(window, item)
	}
}

// Name returns the operator name.
func (b *BufferTime[T]) Name() string {
	return b.name
}
