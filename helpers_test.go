package actionz

import (
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

// sink collects what an operator emits.
type sink[T any] struct {
	mu    sync.Mutex
	items []T
}

func (s *sink[T]) add(v T) {
	s.mu.Lock()
	s.items = append(s.items, v)
	s.mu.Unlock()
}

func (s *sink[T]) all() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// waitLen polls until the sink holds n items or the timeout expires.
func (s *sink[T]) waitLen(t *testing.T, n int, timeout time.Duration) []T {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		items := s.all()
		if len(items) >= n {
			return items
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d items, got %d: %v", n, len(items), items)
		}
		time.Sleep(time.Millisecond)
	}
}

// bindOp binds op to a fresh scope and returns a serialized push function.
func bindOp[In, Out any](op Operator[In, Out], clock Clock) (*Scope, func(In), *sink[Out]) {
	scope := NewScope(clock, nil)
	out := &sink[Out]{}
	var in func(In)
	scope.Do(func() {
		in = op.Bind(scope, out.add)
	})
	return scope, func(v In) {
		scope.Do(func() { in(v) })
	}, out
}

// advance moves the fake clock and waits for the callbacks it released.
func advance(clock *clockz.FakeClock, scope *Scope, d time.Duration) {
	clock.Advance(d)
	clock.BlockUntilReady()
	scope.Wait()
}
