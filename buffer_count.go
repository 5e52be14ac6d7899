package actionz

// BufferCount groups items into batches of a fixed size.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type BufferCount[T any] struct {
	name string
	size int
}

// NewBufferCount creates an operator that emits a batch as soon as it holds
// size items, preserving arrival order. A partial batch is never flushed;
// it is dropped when the scope closes. Sizes below one are treated as one.
//
// When to use:
//   - Sampling gestures as fixed-length point sequences
//   - Grouping events for bulk handling
//
// Example:
//
//	// Every 25 pointer events as one batch
//	batches := actionz.NewBufferCount[any](25)
//
// Parameters:
//   - size: Number of items per batch
func NewBufferCount[T any](size int) *BufferCount[T] {
	if size < 1 {
		size = 1
	}
	return &BufferCount[T]{
		size: size,
		name: "buffer-count",
	}
}

// Bind implements Operator.
func (b *BufferCount[T]) Bind(_ *Scope, next func([]T)) func(T) {
	batch := make([]T, 0, b.size)

	return func(item T) {
		batch = append(batch, item)
		if len(batch) >= b.size {
			full := batch
			batch = make([]T, 0, b.size)
			next(full)
		}
	}
}

// Name returns the operator name.
func (b *BufferCount[T]) Name() string {
	return b.name
}
