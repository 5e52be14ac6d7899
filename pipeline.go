package actionz

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultFetchDebounce is the settle time used when FetchConfig.DebounceTime
// is zero.
const DefaultFetchDebounce = 500 * time.Millisecond

// FetchConfig configures a FetchPipeline.
type FetchConfig struct {
	// FormatInput transforms the trimmed settled value before it is sent.
	// Defaults to the identity.
	FormatInput func(string) string `json:"-" yaml:"-" toml:"-"`

	// BaseURL is the lookup endpoint, without query string. Required.
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`

	// QueryParamKey names the query parameter carrying the value. When empty
	// the value is not sent.
	QueryParamKey string `json:"query_param_key" yaml:"query_param_key" toml:"query_param_key"`

	// QueryParams is a literal query fragment appended after the value
	// parameter, e.g. "lang=en&limit=5".
	QueryParams string `json:"query_params" yaml:"query_params" toml:"query_params"`

	// DebounceTime is how long input must stay unchanged before a lookup.
	DebounceTime time.Duration `json:"debounce_time" yaml:"debounce_time" toml:"debounce_time"`
}

// merge returns c with every non-zero field of over applied on top.
func (c FetchConfig) merge(over FetchConfig) FetchConfig {
	if over.BaseURL != "" {
		c.BaseURL = over.BaseURL
	}
	if over.QueryParamKey != "" {
		c.QueryParamKey = over.QueryParamKey
	}
	if over.QueryParams != "" {
		c.QueryParams = over.QueryParams
	}
	if over.DebounceTime > 0 {
		c.DebounceTime = over.DebounceTime
	}
	if over.FormatInput != nil {
		c.FormatInput = over.FormatInput
	}
	return c
}

func defaultFetchConfig() FetchConfig {
	return FetchConfig{
		DebounceTime: DefaultFetchDebounce,
		FormatInput:  func(s string) string { return s },
	}
}

func validateFetchConfig(cfg FetchConfig) error {
	if cfg.BaseURL == "" {
		return ErrNoBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	return nil
}

// FetchPipeline turns the value of a text element into debounced lookups and
// publishes the lifecycle of each one as EventFetchStatus events:
//
//	input "" or blank        -> EMPTY
//	any other input          -> DEBOUNCING (on every keystroke)
//	settled, non-blank value -> PENDING
//	latest lookup answered   -> SUCCESS or ERROR
//
// Only the most recent lookup can produce SUCCESS or ERROR; older ones are
// cancelled and their answers discarded. A settled lookup identical to the
// previous one still reports PENDING but is not sent again: its earlier
// answer is re-dispatched, or, if it is still in flight, awaited.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type FetchPipeline struct {
	id      string
	el      Element
	opts    options
	fetcher Fetcher
	logger  *zap.Logger
	input   *Cell[string]

	mu             sync.Mutex
	cfg            FetchConfig
	scope          *Scope
	stopCell       func()
	removeListener func()
	detached       bool
}

// lookup is one settled, prepared input value.
type lookup struct {
	raw    string
	query  string
	target string
}

// outcome pairs a lookup with what the fetcher returned for it.
type outcome struct {
	lookup lookup
	result Result[Response]
}

// lookupState is the per-generation memory used for deduplication. It is
// only touched inside the generation's scope.
type lookupState struct {
	inFlight bool
	failed   bool
	terminal *StatusEvent
}

// AttachFetch attaches a fetch pipeline to el. cfg is merged over the
// defaults (500ms debounce, identity formatting); BaseURL is required.
func AttachFetch(el Element, cfg FetchConfig, opts ...Option) (*FetchPipeline, error) {
	merged := defaultFetchConfig().merge(cfg)
	if err := validateFetchConfig(merged); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(nil).WithClock(o.clock)
	}

	id := uuid.NewString()
	p := &FetchPipeline{
		id:      id,
		el:      el,
		opts:    o,
		fetcher: fetcher,
		logger:  o.logger.With(zap.String("action_id", id), zap.String("kind", "fetch")),
		input:   NewCell(""),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cfg = merged
	p.build()
	p.removeListener = el.AddEventListener(EventInput, func(Event) {
		p.input.Next(p.el.Value())
	})

	p.logger.Debug("fetch pipeline attached",
		zap.String("base_url", merged.BaseURL),
		zap.Duration("debounce", merged.DebounceTime),
	)
	return p, nil
}

// ID returns the pipeline's instance identifier.
func (p *FetchPipeline) ID() string {
	return p.id
}

// Config returns the effective configuration.
func (p *FetchPipeline) Config() FetchConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Wait blocks until the callbacks already queued on the current chain have
// run. Lookups still in flight are not waited for. It must not be called
// from an event handler.
func (p *FetchPipeline) Wait() {
	p.mu.Lock()
	scope := p.scope
	p.mu.Unlock()

	scope.Wait()
}

// Reconfigure merges cfg over the current configuration field by field,
// cancels the running chain, including any lookup in flight, and rebuilds
// it. If the element has already received input, the current value is
// replayed into the new chain so the lookup is redone with the new settings.
// The native input listener is left in place.
func (p *FetchPipeline) Reconfigure(cfg FetchConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.detached {
		p.logger.Warn("reconfigure after detach ignored")
		return
	}

	p.teardown()
	p.cfg = p.cfg.merge(cfg)
	p.build()

	p.logger.Debug("fetch pipeline reconfigured",
		zap.String("base_url", p.cfg.BaseURL),
		zap.Duration("debounce", p.cfg.DebounceTime),
	)
}

// Detach cancels the chain and any lookup in flight and removes the native
// input listener. Calling Detach again is a no-op.
func (p *FetchPipeline) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.detached {
		return
	}
	p.detached = true
	p.teardown()
	p.removeListener()

	p.logger.Debug("fetch pipeline detached")
}

func (p *FetchPipeline) teardown() {
	p.stopCell()
	p.scope.Close()
}

// build binds a fresh chain to the input cell. Callers hold p.mu.
func (p *FetchPipeline) build() {
	cfg := p.cfg
	scope := NewScope(p.opts.clock, p.logger)
	state := &lookupState{}

	classify := NewTap(func(v string) {
		if strings.TrimSpace(v) == "" {
			p.dispatch(StatusEvent{Status: StatusEmpty, Value: v})
			return
		}
		p.dispatch(StatusEvent{Status: StatusDebouncing, Value: v})
	}).WithName("classify")

	settle := NewDebounce[string](cfg.DebounceTime)

	nonBlank := NewFilter(func(v string) bool {
		return strings.TrimSpace(v) != ""
	}).WithName("non-blank")

	prepare := NewMapper("prepare", func(v string) lookup {
		query := cfg.FormatInput(strings.TrimSpace(v))
		return lookup{
			raw:    v,
			query:  query,
			target: BuildTarget(cfg.BaseURL, cfg.QueryParamKey, cfg.QueryParams, query),
		}
	})

	pending := NewTap(func(l lookup) {
		p.dispatch(StatusEvent{Status: StatusPending, Value: l.raw})
	}).WithName("pending")

	dedupe := NewDistinct(func(l lookup) string { return l.target }).
		Unless(func(lookup) bool { return state.failed }).
		OnDuplicate(func(l lookup) {
			p.opts.metrics.observeRequest(OutcomeDeduplicated, 0)
			p.logger.Debug("duplicate lookup skipped", zap.String("target", l.target))
			if !state.inFlight && state.terminal != nil {
				p.dispatch(*state.terminal)
			}
		}).
		WithName("dedupe")

	issue := NewTap(func(lookup) {
		state.inFlight = true
		state.failed = false
		state.terminal = nil
	}).WithName("issue")

	request := NewSwitchLatest("request", func(ctx context.Context, l lookup) outcome {
		return outcome{lookup: l, result: p.fetcher.Get(ctx, l.target)}
	}).OnSuperseded(func(l lookup) {
		p.opts.metrics.observeRequest(OutcomeSuperseded, 0)
		p.logger.Debug("lookup superseded", zap.String("target", l.target))
	})

	respond := func(o outcome) {
		state.inFlight = false
		p.respond(state, o)
	}

	var in func(string)
	scope.Do(func() {
		in = classify.Bind(scope,
			settle.Bind(scope,
				nonBlank.Bind(scope,
					prepare.Bind(scope,
						pending.Bind(scope,
							dedupe.Bind(scope,
								issue.Bind(scope,
									request.Bind(scope, respond))))))))
	})
	feed := func(v string) {
		scope.Do(func() { in(v) })
	}

	p.scope = scope
	if p.input.Pushes() > 0 {
		p.stopCell = p.input.Subscribe(feed)
	} else {
		p.stopCell = p.input.Watch(feed)
	}
}

// respond turns the latest lookup's result into a terminal status. It runs
// inside the scope.
func (p *FetchPipeline) respond(state *lookupState, o outcome) {
	duration, _, _ := o.result.GetDurationMetadata(MetadataDuration)

	if o.result.IsError() {
		state.failed = true
		p.opts.metrics.observeRequest(OutcomeTransportError, duration)
		p.logger.Warn("lookup failed",
			zap.String("target", o.lookup.target),
			zap.Error(o.result.Error()),
		)
		if p.opts.transportErrors {
			p.dispatch(StatusEvent{Status: StatusError, Value: o.result.Error()})
		}
		return
	}

	resp := o.result.Value()
	ev := StatusEvent{Status: StatusSuccess, Value: resp}
	outcomeLabel := OutcomeSuccess
	if resp.IsLogicalError() {
		ev.Status = StatusError
		outcomeLabel = OutcomeError
	}
	state.terminal = &ev
	p.opts.metrics.observeRequest(outcomeLabel, duration)
	p.dispatch(ev)
}

func (p *FetchPipeline) dispatch(ev StatusEvent) {
	p.opts.metrics.observeStatus(ev.Status)
	p.logger.Debug("status", zap.Stringer("status", ev.Status))
	p.el.DispatchEvent(Event{Type: EventFetchStatus, Detail: ev})
}
