package actionz

import "sync"

// Cell is a multicast holder of the latest value. New observers added with
// Subscribe immediately receive the current value; Watch skips that replay
// and only sees later pushes. Next stores a value and notifies every
// observer synchronously, in subscription order.
type Cell[T any] struct {
	mu        sync.Mutex
	value     T
	observers []cellObserver[T]
	nextID    uint64
	pushes    uint64
}

type cellObserver[T any] struct {
	fn func(T)
	id uint64
}

// NewCell creates a cell seeded with value.
func NewCell[T any](seed T) *Cell[T] {
	return &Cell[T]{value: seed}
}

// Value returns the current value.
func (c *Cell[T]) Value() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Pushes returns how many times Next has been called. A cell that has never
// been pushed still holds its seed.
func (c *Cell[T]) Pushes() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pushes
}

// Next stores value and delivers it to every observer.
func (c *Cell[T]) Next(value T) {
	c.mu.Lock()
	c.value = value
	c.pushes++
	observers := make([]cellObserver[T], len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, o := range observers {
		o.fn(value)
	}
}

// Subscribe registers fn and delivers the current value to it before
// returning. The returned function removes the observer; calling it more
// than once is harmless.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	unsubscribe, current := c.add(fn)
	fn(current)
	return unsubscribe
}

// Watch registers fn for future pushes only. The seed (or whatever value the
// cell currently holds) is never delivered to it.
func (c *Cell[T]) Watch(fn func(T)) func() {
	unsubscribe, _ := c.add(fn)
	return unsubscribe
}

// Observers returns the number of registered observers.
func (c *Cell[T]) Observers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observers)
}

func (c *Cell[T]) add(fn func(T)) (func(), T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, cellObserver[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { c.remove(id) })
	}, c.value
}

func (c *Cell[T]) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, o := range c.observers {
		if o.id == id {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}
