// Package testing provides test utilities for actionz adapters.
package testing

import (
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/actionz"
	"github.com/zoobzio/clockz"
)

// Recorder collects the events of one type dispatched on an element.
type Recorder struct {
	mu     sync.Mutex
	events []actionz.Event
	notify chan struct{}
}

// Record starts recording eventType on el. The listener is removed when the
// test finishes.
func Record(t *testing.T, el actionz.Element, eventType string) *Recorder {
	t.Helper()

	r := &Recorder{notify: make(chan struct{}, 1)}
	remove := el.AddEventListener(eventType, func(ev actionz.Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()

		select {
		case r.notify <- struct{}{}:
		default:
		}
	})
	t.Cleanup(remove)
	return r
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []actionz.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]actionz.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Details returns the Detail of every recorded event.
func (r *Recorder) Details() []any {
	events := r.Events()
	details := make([]any, len(events))
	for i, ev := range events {
		details[i] = ev.Detail
	}
	return details
}

// Statuses returns the recorded status events, skipping any other detail.
func (r *Recorder) Statuses() []actionz.StatusEvent {
	events := r.Events()
	statuses := make([]actionz.StatusEvent, 0, len(events))
	for _, ev := range events {
		if s, ok := ev.Detail.(actionz.StatusEvent); ok {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// WaitFor blocks until at least n events were recorded or timeout expires,
// failing the test on timeout.
func (r *Recorder) WaitFor(t *testing.T, n int, timeout time.Duration) []actionz.Event {
	t.Helper()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if events := r.Events(); len(events) >= n {
			return events
		}
		select {
		case <-r.notify:
		case <-timer.C:
			t.Fatalf("expected at least %d events, got %d", n, r.Len())
			return nil
		}
	}
}

// AssertCount verifies the expected number of events were recorded.
func AssertCount(t *testing.T, r *Recorder, expected int) {
	t.Helper()

	if got := r.Len(); got != expected {
		t.Errorf("expected %d events, got %d: %v", expected, got, r.Details())
	}
}

// AssertStatuses verifies the recorded status sequence.
func AssertStatuses(t *testing.T, r *Recorder, expected ...actionz.Status) {
	t.Helper()

	got := r.Statuses()
	if len(got) != len(expected) {
		t.Errorf("expected statuses %v, got %v", expected, statusList(got))
		return
	}
	for i := range expected {
		if got[i].Status != expected[i] {
			t.Errorf("expected statuses %v, got %v", expected, statusList(got))
			return
		}
	}
}

// Waiter is implemented by *actionz.Adapter and *actionz.FetchPipeline.
type Waiter interface {
	Wait()
}

// Settle advances a fake clock by d and waits until w has run the timer
// callbacks it released.
func Settle(clock *clockz.FakeClock, w Waiter, d time.Duration) {
	clock.Advance(d)
	clock.BlockUntilReady()
	w.Wait()
}

func statusList(events []actionz.StatusEvent) []actionz.Status {
	out := make([]actionz.Status, len(events))
	for i, ev := range events {
		out[i] = ev.Status
	}
	return out
}
