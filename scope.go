package actionz

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Clock provides time operations for deterministic testing.
type Clock = clockz.Clock

// Timer represents a single event timer.
type Timer = clockz.Timer

// RealClock is the default Clock using standard time.
var RealClock Clock = clockz.RealClock

// Scope serializes everything one adapter generation does. Listener pushes,
// timer callbacks and request completions are queued and run one at a time,
// in arrival order, which gives every chain the single-threaded semantics of
// a UI event loop. Work queued while the scope is busy, including work queued
// by the running callback itself, runs after the current callback returns.
//
// Timer callbacks never run on the clock's own goroutine: they are handed to
// a drain goroutine, so a callback is free to read the clock or arm new
// timers.
//
// Close is the only cancellation point: it stops every timer created through
// AfterFunc and cancels the scope context. Once Close returns, no callback of
// this scope will run again. Close and Wait must not be called from inside a
// callback.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Scope struct {
	mu      sync.Mutex
	idle    *sync.Cond
	clock   Clock
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	timers  map[Timer]struct{}
	queue   []func()
	running bool
	closed  bool
}

// NewScope creates an open scope driven by clock.
func NewScope(clock Clock, logger *zap.Logger) *Scope {
	if clock == nil {
		clock = RealClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scope{
		clock:  clock,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[Timer]struct{}),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Do queues fn on the scope. When the scope is idle fn runs before Do
// returns, on the calling goroutine; otherwise it runs after the work ahead
// of it. Do reports false without queueing fn if the scope is closed.
func (s *Scope) Do(fn func()) bool {
	start, ok := s.push(fn)
	if start {
		s.drain()
	}
	return ok
}

// Wait blocks until the scope has no queued or running callback.
func (s *Scope) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.running {
		s.idle.Wait()
	}
}

// push queues fn and reports whether the caller must start draining.
func (s *Scope) push(fn func()) (start, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, false
	}
	s.queue = append(s.queue, fn)
	if s.running {
		return false, true
	}
	s.running = true
	return true, true
}

// drain runs queued callbacks until the queue is empty or the scope closes.
func (s *Scope) drain() {
	done := false
	defer func() {
		if !done {
			// fn panicked; release the scope before the panic propagates.
			s.settle()
		}
	}()

	for {
		s.mu.Lock()
		if s.closed || len(s.queue) == 0 {
			s.mu.Unlock()
			done = true
			s.settle()
			return
		}
		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
	}
}

func (s *Scope) settle() {
	s.mu.Lock()
	s.queue = nil
	s.running = false
	s.idle.Broadcast()
	s.mu.Unlock()
}

// AfterFunc schedules fn to run inside the scope after d.
// It must be called from inside a scope callback.
func (s *Scope) AfterFunc(d time.Duration, fn func()) Timer {
	var t Timer
	t = s.clock.AfterFunc(d, func() {
		if start, _ := s.push(func() { s.fire(t, fn) }); start {
			go s.drain()
		}
	})

	s.mu.Lock()
	s.timers[t] = struct{}{}
	s.mu.Unlock()
	return t
}

func (s *Scope) fire(t Timer, fn func()) {
	s.mu.Lock()
	// A timer stopped after it had already fired is no longer tracked.
	_, live := s.timers[t]
	delete(s.timers, t)
	s.mu.Unlock()

	if live {
		fn()
	}
}

// Stop cancels a timer created by AfterFunc. It must be called from inside a
// scope callback.
func (s *Scope) Stop(t Timer) {
	if t == nil {
		return
	}
	t.Stop()

	s.mu.Lock()
	delete(s.timers, t)
	s.mu.Unlock()
}

// Go runs fn on its own goroutine with the scope context. Blocking work such
// as network requests belongs here; results must re-enter through Do.
func (s *Scope) Go(fn func(ctx context.Context)) {
	go fn(s.ctx)
}

// Context returns the scope context, cancelled by Close.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Now returns the current time of the scope clock.
func (s *Scope) Now() time.Time {
	return s.clock.Now()
}

// Logger returns the logger the scope was created with.
func (s *Scope) Logger() *zap.Logger {
	return s.logger
}

// Pending returns the number of live timers.
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops all timers and cancels the scope context. Queued callbacks
// are dropped; a callback already running is allowed to finish first. It is
// safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	for s.running {
		s.idle.Wait()
	}
	timers := s.timers
	s.timers = make(map[Timer]struct{})
	s.mu.Unlock()

	// Timers are stopped outside the lock: a fake clock delivers callbacks
	// while holding its own lock, and those callbacks take s.mu.
	for t := range timers {
		t.Stop()
	}
	s.cancel()
}
