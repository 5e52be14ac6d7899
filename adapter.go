package actionz

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Adapter is a rate adapter attached to one element. It observes one native
// event type, shapes the stream with its kind's operator chain and dispatches
// every aggregate as an EventEmit event on the element.
//
// An Adapter owns exactly one native listener, one Cell and one bound chain
// at a time. Reconfigure releases all three before creating their
// replacements, so two generations never overlap.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Adapter struct {
	id      string
	kind    Kind
	el      Element
	profile profile
	opts    options
	logger  *zap.Logger
	emits   emitLog

	mu       sync.Mutex
	cfg      AdapterConfig
	gen      *generation
	detached bool
}

// emitLog is read from any goroutine while the adapter's chain writes it.
type emitLog struct {
	at    atomic.Pointer[time.Time]
	count atomic.Uint64
}

func (l *emitLog) record(t time.Time) {
	l.at.Store(&t)
	l.count.Add(1)
}

func (l *emitLog) last() time.Time {
	if t := l.at.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// generation is everything one configuration of an adapter owns.
type generation struct {
	scope          *Scope
	cell           *Cell[any]
	stopCell       func()
	removeListener func()
}

// Attach attaches a rate adapter of the given kind to el.
func Attach(el Element, kind Kind, cfg AdapterConfig, opts ...Option) (*Adapter, error) {
	p, ok := profiles[kind]
	if !ok {
		return nil, ErrUnknownKind
	}

	o := newOptions(opts)
	id := uuid.NewString()
	a := &Adapter{
		id:      id,
		kind:    kind,
		el:      el,
		profile: p,
		opts:    o,
		logger:  o.logger.With(zap.String("action_id", id), zap.String("kind", kind.String())),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = p.resolve(cfg)
	a.gen = a.build(a.cfg)

	a.logger.Debug("adapter attached",
		zap.String("event", a.cfg.On),
		zap.Duration("duration", a.cfg.Duration),
		zap.Int("count", a.cfg.Count),
	)
	return a, nil
}

// AttachDebounce attaches a debounce adapter: after Duration (default 250ms)
// without a new On event (default "input"), the last event is emitted.
func AttachDebounce(el Element, cfg AdapterConfig, opts ...Option) *Adapter {
	return mustAttach(el, KindDebounce, cfg, opts)
}

// AttachThrottle attaches a throttle adapter: the first On event (default
// "mousemove") of every Duration window (default 250ms) is emitted.
func AttachThrottle(el Element, cfg AdapterConfig, opts ...Option) *Adapter {
	return mustAttach(el, KindThrottle, cfg, opts)
}

// AttachBufferTime attaches a time-window buffer: the On events (default
// "mousemove") of every Duration window (default 500ms) are emitted as one
// ordered batch. Idle windows emit nothing.
func AttachBufferTime(el Element, cfg AdapterConfig, opts ...Option) *Adapter {
	return mustAttach(el, KindBufferTime, cfg, opts)
}

// AttachBufferCount attaches a count-window buffer: every Count (default 25)
// On events (default "mousemove") are emitted as one ordered batch.
func AttachBufferCount(el Element, cfg AdapterConfig, opts ...Option) *Adapter {
	return mustAttach(el, KindBufferCount, cfg, opts)
}

func mustAttach(el Element, kind Kind, cfg AdapterConfig, opts []Option) *Adapter {
	a, err := Attach(el, kind, cfg, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// ID returns the adapter's instance identifier, also used as the
// action_id log field.
func (a *Adapter) ID() string {
	return a.id
}

// Kind returns the adapter kind.
func (a *Adapter) Kind() Kind {
	return a.kind
}

// Config returns the effective configuration, defaults applied.
func (a *Adapter) Config() AdapterConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// LastEmit returns when the adapter last dispatched an aggregate, by the
// adapter's clock, or the zero time.
func (a *Adapter) LastEmit() time.Time {
	return a.emits.last()
}

// Emits returns how many aggregates the adapter has dispatched across all
// of its configurations.
func (a *Adapter) Emits() uint64 {
	return a.emits.count.Load()
}

// Wait blocks until the callbacks already queued on the current chain have
// run. It must not be called from an event handler.
func (a *Adapter) Wait() {
	a.mu.Lock()
	gen := a.gen
	a.mu.Unlock()

	if gen != nil {
		gen.scope.Wait()
	}
}

// Reconfigure replaces the configuration wholesale: fields left zero go back
// to the kind defaults, not to their previous values. The old listener,
// cell and timers are released before the new ones exist.
func (a *Adapter) Reconfigure(cfg AdapterConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.detached {
		a.logger.Warn("reconfigure after detach ignored")
		return
	}

	a.gen.teardown()
	a.cfg = a.profile.resolve(cfg)
	a.gen = a.build(a.cfg)

	a.logger.Debug("adapter reconfigured",
		zap.String("event", a.cfg.On),
		zap.Duration("duration", a.cfg.Duration),
		zap.Int("count", a.cfg.Count),
	)
}

// Detach unregisters the native listener and stops the chain. Pending
// windows and timers are dropped without emitting. Calling Detach again is
// a no-op.
func (a *Adapter) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.detached {
		return
	}
	a.detached = true
	a.gen.teardown()
	a.gen = nil

	a.logger.Debug("adapter detached")
}

func (a *Adapter) build(cfg AdapterConfig) *generation {
	scope := NewScope(a.opts.clock, a.logger)
	cell := NewCell(a.profile.seed(a.el))

	emit := func(aggregate any) {
		a.emits.record(scope.Now())
		a.opts.metrics.observeEmit(a.kind)
		a.el.DispatchEvent(Event{Type: EventEmit, Detail: aggregate})
	}

	var input func(any)
	scope.Do(func() {
		input = a.profile.chain(cfg)(scope, emit)
	})
	feed := func(v any) {
		scope.Do(func() { input(v) })
	}

	var stopCell func()
	if a.profile.replaySeed {
		stopCell = cell.Subscribe(feed)
	} else {
		stopCell = cell.Watch(feed)
	}

	remove := a.el.AddEventListener(cfg.On, func(ev Event) {
		a.opts.metrics.observeEvent(a.kind)
		cell.Next(ev)
	})

	return &generation{
		scope:          scope,
		cell:           cell,
		stopCell:       stopCell,
		removeListener: remove,
	}
}

func (g *generation) teardown() {
	if g == nil {
		return
	}
	g.removeListener()
	g.stopCell()
	g.scope.Close()
}
