package actionz

import (
	"context"
)

// SwitchLatest maps every item to asynchronous work and only ever forwards
// the result of the most recent item.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type SwitchLatest[In, Out any] struct {
	name         string
	fn           func(context.Context, In) Out
	onSuperseded func(In)
}

// NewSwitchLatest creates an operator that runs fn for each item on its own
// goroutine. When a new item arrives while a previous run is still in
// flight, the previous run's context is cancelled and whatever it returns is
// discarded. Closing the scope cancels the run in flight.
//
// When to use:
//   - Lookups driven by changing input where only the latest answer matters
//   - Any request/response stage where stale answers must never surface
//
// Example:
//
//	lookup := actionz.NewSwitchLatest("lookup", func(ctx context.Context, q string) actionz.Result[actionz.Response] {
//		return fetcher.Get(ctx, "https://example.com/search?q="+q)
//	})
//
// Parameters:
//   - name: Descriptive name for debugging and monitoring
//   - fn: Blocking work; it should honour ctx cancellation
func NewSwitchLatest[In, Out any](name string, fn func(context.Context, In) Out) *SwitchLatest[In, Out] {
	return &SwitchLatest[In, Out]{
		name: name,
		fn:   fn,
	}
}

// OnSuperseded registers fn to be called, inside the scope, with every item
// whose run was cancelled by a newer one.
func (sw *SwitchLatest[In, Out]) OnSuperseded(fn func(In)) *SwitchLatest[In, Out] {
	sw.onSuperseded = fn
	return sw
}

// Bind implements Operator.
func (sw *SwitchLatest[In, Out]) Bind(s *Scope, next func(Out)) func(In) {
	var seq uint64
	var cancel context.CancelFunc
	var current In

	return func(item In) {
		if cancel != nil {
			cancel()
			if sw.onSuperseded != nil {
				sw.onSuperseded(current)
			}
		}

		seq++
		mine := seq
		current = item
		ctx, c := context.WithCancel(s.Context())
		cancel = c

		s.Go(func(context.Context) {
			out := sw.fn(ctx, item)
			s.Do(func() {
				if mine != seq {
					return
				}
				cancel()
				cancel = nil
				next(out)
			})
		})
	}
}

// Name returns the operator name.
func (sw *SwitchLatest[In, Out]) Name() string {
	return sw.name
}
