package actionz

import "sync"

// Native event types the adapters default to.
const (
	EventInput     = "input"
	EventChange    = "change"
	EventMouseMove = "mousemove"
)

// Synthetic event types dispatched by adapters.
const (
	// EventEmit carries an aggregate: a single raw event for Debounce and
	// Throttle, an ordered non-empty []any for BufferTime and BufferCount.
	EventEmit = "emit"

	// EventFetchStatus carries a StatusEvent.
	EventFetchStatus = "fetchstatus"
)

// Event is dispatched on an Element. Native events come from the host;
// synthetic events are dispatched by adapters with the aggregate or status
// in Detail.
type Event struct {
	Detail any
	Type   string
}

// Listener handles events dispatched on an Element.
type Listener func(Event)

// Element is the host UI element an adapter attaches to.
type Element interface {
	// AddEventListener registers fn for events of the given type and returns
	// a function that unregisters it.
	AddEventListener(eventType string, fn Listener) (remove func())

	// DispatchEvent delivers ev to the listeners registered for ev.Type.
	DispatchEvent(ev Event)

	// Value returns the element's current textual value.
	Value() string
}

// Node is an in-memory Element. Listeners run synchronously on the
// dispatching goroutine in registration order.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Node struct {
	mu        sync.Mutex
	value     string
	listeners map[string][]nodeListener
	nextID    uint64
}

type nodeListener struct {
	fn Listener
	id uint64
}

// NewNode creates a Node holding value.
func NewNode(value string) *Node {
	return &Node{
		value:     value,
		listeners: make(map[string][]nodeListener),
	}
}

// Value returns the node's textual value.
func (n *Node) Value() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.value
}

// SetValue replaces the node's value without dispatching anything.
func (n *Node) SetValue(value string) {
	n.mu.Lock()
	n.value = value
	n.mu.Unlock()
}

// Input sets the value and dispatches a native input event, the way a text
// field does on every keystroke.
func (n *Node) Input(value string) {
	n.SetValue(value)
	n.DispatchEvent(Event{Type: EventInput, Detail: value})
}

// Fire dispatches a native event of the given type.
func (n *Node) Fire(eventType string, detail any) {
	n.DispatchEvent(Event{Type: eventType, Detail: detail})
}

// AddEventListener implements Element.
func (n *Node) AddEventListener(eventType string, fn Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.listeners[eventType] = append(n.listeners[eventType], nodeListener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { n.removeListener(eventType, id) })
	}
}

// DispatchEvent implements Element.
func (n *Node) DispatchEvent(ev Event) {
	n.mu.Lock()
	listeners := make([]nodeListener, len(n.listeners[ev.Type]))
	copy(listeners, n.listeners[ev.Type])
	n.mu.Unlock()

	for _, l := range listeners {
		l.fn(ev)
	}
}

// ListenerCount returns the number of listeners registered for eventType.
func (n *Node) ListenerCount(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners[eventType])
}

func (n *Node) removeListener(eventType string, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ls := n.listeners[eventType]
	for i, l := range ls {
		if l.id == id {
			n.listeners[eventType] = append(ls[:i], ls[i+1:]...)
			break
		}
	}
	if len(n.listeners[eventType]) == 0 {
		delete(n.listeners, eventType)
	}
}
