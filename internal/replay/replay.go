// Package replay runs a scripted interaction against a rate adapter on a
// fake clock and records every aggregate it dispatches.
package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"

	"github.com/zoobzio/actionz"
	"github.com/zoobzio/actionz/internal/config"
)

// DefaultTail is how long the clock keeps running after the last step so
// pending windows and debounces can complete.
const DefaultTail = time.Second

// Transcript formats.
const (
	FormatJSONLines = "jsonl"
	FormatMsgpack   = "msgpack"
)

// Record is one synthetic event dispatched during a replay.
type Record struct {
	AtMS   int64  `json:"at_ms" msgpack:"at_ms"`
	Type   string `json:"type" msgpack:"type"`
	Detail any    `json:"detail" msgpack:"detail"`
}

// Options tune a replay.
type Options struct {
	Logger  *zap.Logger
	Metrics *actionz.Metrics
	Tail    time.Duration
}

// step is a timeline entry: a native event or a reconfigure.
type step struct {
	at    time.Duration
	event *config.Event
	recon *config.Reconfigure
}

// Run replays script and returns the records in dispatch order. Steps
// sharing a timestamp run reconfigures first, then events in script order.
func Run(script config.Script, opts Options) ([]Record, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tail <= 0 {
		opts.Tail = DefaultTail
	}

	clock := clockz.NewFakeClock()
	start := clock.Now()
	node := actionz.NewNode(script.Value)

	var mu sync.Mutex
	var records []Record
	stop := node.AddEventListener(actionz.EventEmit, func(ev actionz.Event) {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, Record{
			AtMS:   clock.Now().Sub(start).Milliseconds(),
			Type:   ev.Type,
			Detail: normalize(ev.Detail),
		})
	})
	defer stop()

	adapter, err := actionz.Attach(node, script.AdapterKind(), script.AdapterConfig(),
		actionz.WithClock(clock),
		actionz.WithLogger(opts.Logger),
		actionz.WithMetrics(opts.Metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("attaching %s: %w", script.Kind, err)
	}
	defer adapter.Detach()

	var elapsed time.Duration
	advanceTo := func(target time.Duration) {
		// One millisecond at a time so re-armed windows tick on schedule.
		for elapsed < target {
			clock.Advance(time.Millisecond)
			clock.BlockUntilReady()
			adapter.Wait()
			elapsed += time.Millisecond
		}
	}

	steps := timeline(script)
	for _, st := range steps {
		advanceTo(st.at)
		switch {
		case st.recon != nil:
			adapter.Reconfigure(st.recon.AdapterConfig())
			opts.Logger.Debug("replay reconfigured", zap.Duration("at", st.at))
		case st.event != nil:
			fire(node, adapter, *st.event)
		}
	}
	advanceTo(elapsed + opts.Tail)

	mu.Lock()
	defer mu.Unlock()
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}

func timeline(script config.Script) []step {
	steps := make([]step, 0, len(script.Events)+len(script.Reconfigure))
	for i := range script.Reconfigure {
		rc := script.Reconfigure[i]
		steps = append(steps, step{at: rc.At(), recon: &rc})
	}
	for i := range script.Events {
		ev := script.Events[i]
		steps = append(steps, step{at: ev.At(), event: &ev})
	}
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].at < steps[j].at
	})
	return steps
}

func fire(node *actionz.Node, adapter *actionz.Adapter, ev config.Event) {
	eventType := ev.Type
	if eventType == "" {
		eventType = adapter.Config().On
	}
	if s, ok := ev.Value.(string); ok && eventType == actionz.EventInput {
		node.Input(s)
		return
	}
	node.Fire(eventType, ev.Value)
}

// normalize turns events into plain maps so every transcript format can
// encode them.
func normalize(v any) any {
	switch x := v.(type) {
	case actionz.Event:
		return map[string]any{"type": x.Type, "detail": x.Detail}
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

// Write encodes records to w in the given format: one JSON object per line,
// or a single msgpack array.
func Write(w io.Writer, format string, records []Record) error {
	switch format {
	case FormatJSONLines, "":
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("encoding record: %w", err)
			}
		}
		return nil
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(records); err != nil {
			return fmt.Errorf("encoding transcript: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported transcript format %q", format)
	}
}
