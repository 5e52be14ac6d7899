package actionz

import (
	"go.uber.org/zap"
)

// Option configures an adapter or fetch pipeline at attach time.
type Option func(*options)

//nolint:govet // fieldalignment: struct layout optimized for readability
type options struct {
	clock           Clock
	logger          *zap.Logger
	metrics         *Metrics
	fetcher         Fetcher
	transportErrors bool
}

func newOptions(opts []Option) options {
	o := options{
		clock:  RealClock,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock sets the clock used for every timer. Tests pass a
// clockz fake clock here.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records adapter and fetch activity into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithFetcher replaces the HTTP fetcher used by the fetch pipeline.
func WithFetcher(f Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithTransportErrors makes the fetch pipeline report transport failures as
// an ERROR status carrying the *StreamError[Response]. Without it transport
// failures are logged and counted but never surfaced as a status.
func WithTransportErrors() Option {
	return func(o *options) {
		o.transportErrors = true
	}
}
