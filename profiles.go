package actionz

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind selects one of the rate adapter profiles.
type Kind int

const (
	// KindDebounce emits the last event after a quiet period.
	KindDebounce Kind = iota
	// KindThrottle emits the first event of every window.
	KindThrottle
	// KindBufferTime emits the events of every time window as a batch.
	KindBufferTime
	// KindBufferCount emits every Count events as a batch.
	KindBufferCount
)

// Defaults applied when an AdapterConfig field is left zero.
const (
	DefaultDebounceDuration   = 250 * time.Millisecond
	DefaultThrottleDuration   = 250 * time.Millisecond
	DefaultBufferTimeDuration = 500 * time.Millisecond
	DefaultBufferCount        = 25
)

// ErrUnknownKind is returned for a Kind outside the four profiles.
var ErrUnknownKind = errors.New("unknown adapter kind")

var kindNames = map[Kind]string{
	KindDebounce:    "debounce",
	KindThrottle:    "throttle",
	KindBufferTime:  "buffer-time",
	KindBufferCount: "buffer-count",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a name such as "debounce" or "buffer-count" to its Kind.
// Underscores are accepted in place of dashes.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for k, n := range kindNames {
		if n == normalized {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// AdapterConfig configures a rate adapter. A zero field selects the kind
// default; Duration is ignored by BufferCount and Count by the other kinds.
type AdapterConfig struct {
	// On is the native event type to observe.
	On string `json:"on" yaml:"on" toml:"on"`

	// Duration is the debounce, throttle or buffer window.
	Duration time.Duration `json:"duration" yaml:"duration" toml:"duration"`

	// Count is the BufferCount batch size.
	Count int `json:"count" yaml:"count" toml:"count"`
}

// profile is one parameterization of the shared adapter engine.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type profile struct {
	event    string
	duration time.Duration
	count    int

	// replaySeed delivers the cell's seed into the chain. Debounce and
	// Throttle watch the cell instead, so attaching never emits.
	replaySeed bool

	seed  func(Element) any
	chain func(cfg AdapterConfig) chainBinder
}

// chainBinder binds a chain to a scope with an untyped sink.
type chainBinder func(s *Scope, emit func(any)) func(any)

func binder[T any](op Operator[any, T]) chainBinder {
	return func(s *Scope, emit func(any)) func(any) {
		return op.Bind(s, func(out T) { emit(out) })
	}
}

func elementValue(el Element) any { return el.Value() }

func noSeed(Element) any { return nil }

func nonEmpty(batch []any) bool { return len(batch) > 0 }

var profiles = map[Kind]profile{
	KindDebounce: {
		event:    EventInput,
		duration: DefaultDebounceDuration,
		seed:     elementValue,
		chain: func(cfg AdapterConfig) chainBinder {
			return binder[any](NewDebounce[any](cfg.Duration))
		},
	},
	KindThrottle: {
		event:    EventMouseMove,
		duration: DefaultThrottleDuration,
		seed:     elementValue,
		chain: func(cfg AdapterConfig) chainBinder {
			return binder[any](NewThrottle[any](cfg.Duration))
		},
	},
	KindBufferTime: {
		event:      EventMouseMove,
		duration:   DefaultBufferTimeDuration,
		replaySeed: true,
		seed:       noSeed,
		chain: func(cfg AdapterConfig) chainBinder {
			return binder[[]any](Pipe[any, []any, []any](
				Pipe[any, any, []any](
					NewFilter(Truthy).WithName("truthy"),
					NewBufferTime[any](cfg.Duration),
				),
				NewFilter(nonEmpty).WithName("drop-empty"),
			))
		},
	},
	KindBufferCount: {
		event:      EventMouseMove,
		count:      DefaultBufferCount,
		replaySeed: true,
		seed:       noSeed,
		chain: func(cfg AdapterConfig) chainBinder {
			return binder[[]any](Pipe[any, []any, []any](
				Pipe[any, any, []any](
					NewFilter(Truthy).WithName("truthy"),
					NewBufferCount[any](cfg.Count),
				),
				NewFilter(nonEmpty).WithName("drop-empty"),
			))
		},
	},
}

// resolve replaces every zero field of cfg with the profile default. There
// is no merge with a previous configuration.
func (p profile) resolve(cfg AdapterConfig) AdapterConfig {
	out := AdapterConfig{On: cfg.On, Duration: cfg.Duration, Count: cfg.Count}
	if out.On == "" {
		out.On = p.event
	}
	if out.Duration <= 0 {
		out.Duration = p.duration
	}
	if out.Count <= 0 {
		out.Count = p.count
	}
	return out
}
