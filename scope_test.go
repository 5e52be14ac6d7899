package actionz

import (
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestScope_DoAfterClose(t *testing.T) {
	scope := NewScope(clockz.NewFakeClock(), nil)

	ran := false
	if !scope.Do(func() { ran = true }) || !ran {
		t.Fatal("expected Do to run on an open scope")
	}

	scope.Close()
	scope.Close()

	if scope.Do(func() { t.Error("Do ran after Close") }) {
		t.Error("expected Do to report false after Close")
	}
	if !scope.Closed() {
		t.Error("expected Closed to be true")
	}
	if scope.Context().Err() == nil {
		t.Error("expected context to be cancelled by Close")
	}
}

func TestScope_AfterFunc(t *testing.T) {
	clock := clockz.NewFakeClock()
	scope := NewScope(clock, nil)
	defer scope.Close()

	fired := 0
	scope.Do(func() {
		scope.AfterFunc(10*time.Millisecond, func() { fired++ })
	})
	if scope.Pending() != 1 {
		t.Fatalf("expected 1 pending timer, got %d", scope.Pending())
	}

	advance(clock, scope, 10*time.Millisecond)
	scope.Do(func() {
		if fired != 1 {
			t.Errorf("expected timer to fire once, got %d", fired)
		}
	})
	if scope.Pending() != 0 {
		t.Errorf("expected fired timer to be untracked, got %d pending", scope.Pending())
	}
}

func TestScope_StopPreventsFiring(t *testing.T) {
	clock := clockz.NewFakeClock()
	scope := NewScope(clock, nil)
	defer scope.Close()

	fired := false
	scope.Do(func() {
		timer := scope.AfterFunc(10*time.Millisecond, func() { fired = true })
		scope.Stop(timer)
		scope.Stop(nil)
	})

	advance(clock, scope, time.Second)
	scope.Do(func() {
		if fired {
			t.Error("expected stopped timer not to fire")
		}
	})
}

func TestScope_CloseStopsTimers(t *testing.T) {
	clock := clockz.NewFakeClock()
	scope := NewScope(clock, nil)

	fired := false
	scope.Do(func() {
		scope.AfterFunc(10*time.Millisecond, func() { fired = true })
		scope.AfterFunc(20*time.Millisecond, func() { fired = true })
	})
	scope.Close()

	if scope.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", scope.Pending())
	}
	advance(clock, scope, time.Second)
	if fired {
		t.Error("expected no timer to fire after Close")
	}
}

func TestScope_Defaults(t *testing.T) {
	scope := NewScope(nil, nil)
	defer scope.Close()

	if scope.Logger() == nil {
		t.Error("expected a no-op logger by default")
	}
	if scope.Now().IsZero() {
		t.Error("expected the real clock by default")
	}
}

func TestScope_NestedDoRunsAfterCurrent(t *testing.T) {
	scope := NewScope(clockz.NewFakeClock(), nil)
	defer scope.Close()

	var order []string
	scope.Do(func() {
		order = append(order, "outer start")
		if !scope.Do(func() { order = append(order, "inner") }) {
			t.Error("expected nested Do to be accepted")
		}
		order = append(order, "outer end")
	})

	expected := []string{"outer start", "outer end", "inner"}
	if len(order) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, order)
			break
		}
	}
}

func TestScope_TimerCallbackUsesClock(t *testing.T) {
	clock := clockz.NewFakeClock()
	start := clock.Now()
	scope := NewScope(clock, nil)
	defer scope.Close()

	var fired []time.Time
	var tick func()
	tick = func() {
		fired = append(fired, scope.Now())
		scope.AfterFunc(10*time.Millisecond, tick)
	}
	scope.Do(func() {
		scope.AfterFunc(10*time.Millisecond, tick)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		advance(clock, scope, 10*time.Millisecond)
		advance(clock, scope, 10*time.Millisecond)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Advance to return while callbacks read the clock")
	}

	scope.Do(func() {
		if len(fired) != 2 {
			t.Fatalf("expected 2 ticks, got %d", len(fired))
		}
		if d := fired[1].Sub(start); d != 20*time.Millisecond {
			t.Errorf("expected second tick at 20ms, got %v", d)
		}
	})
	if scope.Pending() != 1 {
		t.Errorf("expected the re-armed timer to be pending, got %d", scope.Pending())
	}
}

func TestScope_WaitForTimerCallback(t *testing.T) {
	clock := clockz.NewFakeClock()
	scope := NewScope(clock, nil)
	defer scope.Close()

	release := make(chan struct{})
	finished := false
	scope.Do(func() {
		scope.AfterFunc(time.Millisecond, func() {
			<-release
			finished = true
		})
	})

	clock.Advance(time.Millisecond)
	close(release)
	scope.Wait()

	scope.Do(func() {
		if !finished {
			t.Error("expected Wait to return after the callback finished")
		}
	})
}

func TestScope_PanicReleasesScope(t *testing.T) {
	scope := NewScope(clockz.NewFakeClock(), nil)
	defer scope.Close()

	func() {
		defer func() { _ = recover() }()
		scope.Do(func() { panic("boom") })
	}()

	ran := false
	scope.Do(func() { ran = true })
	if !ran {
		t.Error("expected the scope to accept work after a panic")
	}
}
