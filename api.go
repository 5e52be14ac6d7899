// Package actionz provides event-to-stream adapters: small stateful units
// attached to an interactive element that turn raw, high-frequency
// interaction events into rate-controlled or batched notifications.
//
// Two families of adapters are provided:
//
//   - Rate adapters (Debounce, Throttle, BufferTime, BufferCount) listen to
//     one native event on an element and re-emit a synthetic EventEmit
//     event carrying either a single raw event or an ordered batch.
//   - The fetch pipeline listens to input on a text element and turns its
//     value into debounced, deduplicated GET lookups, publishing an
//     EventFetchStatus timeline (EMPTY, DEBOUNCING, PENDING, SUCCESS, ERROR).
//
// Every adapter follows the same lifecycle:
//
//	node := actionz.NewNode("")
//	action := actionz.AttachDebounce(node, actionz.AdapterConfig{Duration: 300 * time.Millisecond})
//	remove := node.AddEventListener(actionz.EventEmit, func(ev actionz.Event) {
//		fmt.Println("settled:", ev.Detail)
//	})
//	defer remove()
//
//	action.Reconfigure(actionz.AdapterConfig{Duration: 100 * time.Millisecond})
//	action.Detach()
//
// Internally each adapter generation owns a Scope, a Cell and one chain of
// push-based Operators. Reconfigure closes the old scope before the new one
// is built, so no timer from a previous generation can ever fire into the
// element.
package actionz

// Operator is a push-based stream stage. Bind wires the operator in front of
// next for the lifetime of one Scope and returns the function that feeds it.
// Operators should:
//   - Only call next from a scope callback (queued through Scope.Do)
//   - Schedule time through Scope.AfterFunc so Close stops it
//   - Keep all per-stream state inside Bind, never on the operator itself
type Operator[In, Out any] interface {
	// Bind attaches the stage to a scope and a downstream sink.
	Bind(s *Scope, next func(Out)) func(In)

	// Name returns a descriptive name for the operator, useful for debugging.
	Name() string
}

// Action is the handle returned when an adapter is attached to an element.
// It mirrors the host's attach → reconfigure → detach convention.
//
// Handlers of the synthetic events an action dispatches run inside the
// action's scope. They may dispatch native events on the same element; the
// action handles those after the handler returns. They must not call
// Reconfigure, Detach or Wait synchronously.
type Action[C any] interface {
	// Reconfigure tears down the current listener chain and rebuilds it
	// from cfg.
	Reconfigure(cfg C)

	// Detach releases every resource held by the action.
	Detach()
}

// Pipe composes two operators into one.
func Pipe[A, B, C any](first Operator[A, B], second Operator[B, C]) Operator[A, C] {
	return &pipe[A, B, C]{first: first, second: second}
}

type pipe[A, B, C any] struct {
	first  Operator[A, B]
	second Operator[B, C]
}

func (p *pipe[A, B, C]) Bind(s *Scope, next func(C)) func(A) {
	return p.first.Bind(s, p.second.Bind(s, next))
}

func (p *pipe[A, B, C]) Name() string {
	return p.first.Name() + " | " + p.second.Name()
}
