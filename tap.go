package actionz

import (
	"go.uber.org/zap"
)

// Tap executes a side effect for each item while passing items through
// unchanged. The fetch pipeline uses taps to publish status transitions at
// precise points of the chain.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Tap[T any] struct {
	name string
	fn   func(T)
}

// NewTap creates an operator that calls fn on every item and forwards the
// item unchanged. A panic inside fn is recovered and logged; the item is
// still forwarded.
//
// When to use:
//   - Dispatching status events as items cross a stage
//   - Debug logging and metrics
//
// Example:
//
//	pending := actionz.NewTap(func(v string) {
//		log.Printf("settled on %q", v)
//	}).WithName("pending")
func NewTap[T any](fn func(T)) *Tap[T] {
	return &Tap[T]{
		name: "tap",
		fn:   fn,
	}
}

// WithName sets a custom name for this operator.
func (t *Tap[T]) WithName(name string) *Tap[T] {
	t.name = name
	return t
}

// Bind implements Operator.
func (t *Tap[T]) Bind(s *Scope, next func(T)) func(T) {
	return func(item T) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.Logger().Error("side effect panicked",
						zap.String("operator", t.name),
						zap.Any("panic", r),
					)
				}
			}()
			t.fn(item)
		}()
		next(item)
	}
}

// Name returns the operator name.
func (t *Tap[T]) Name() string {
	return t.name
}
