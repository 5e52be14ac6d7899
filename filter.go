package actionz

// Filter passes through only the items for which a predicate returns true.
// Items that don't match are discarded without reaching the next stage.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Filter[T any] struct {
	name      string
	predicate func(T) bool
}

// NewFilter creates an operator that selectively passes items based on a
// predicate. The predicate should be pure; it runs inside the scope.
//
// When to use:
//   - Dropping placeholder or empty values before buffering
//   - Suppressing empty batches after a time window
//   - Skipping blank input before issuing a lookup
//
// Example:
//
//	// Drop blank strings
//	nonBlank := actionz.NewFilter(func(s string) bool {
//		return strings.TrimSpace(s) != ""
//	})
//
//	// Drop empty batches
//	nonEmpty := actionz.NewFilter(func(batch []any) bool {
//		return len(batch) > 0
//	}).WithName("drop-empty")
//
// Parameters:
//   - predicate: Function that returns true for items to keep, false to discard
func NewFilter[T any](predicate func(T) bool) *Filter[T] {
	return &Filter[T]{
		name:      "filter",
		predicate: predicate,
	}
}

// WithName sets a custom name for this operator.
func (f *Filter[T]) WithName(name string) *Filter[T] {
	f.name = name
	return f
}

// Bind implements Operator.
func (f *Filter[T]) Bind(_ *Scope, next func(T)) func(T) {
	return func(item T) {
		if f.predicate(item) {
			next(item)
		}
	}
}

// Name returns the operator name.
func (f *Filter[T]) Name() string {
	return f.name
}

// Truthy reports whether v counts as a present value: nil, the empty string,
// false and numeric zero do not; everything else does.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case int32:
		return x != 0
	case uint:
		return x != 0
	case uint64:
		return x != 0
	case float64:
		return x != 0
	case float32:
		return x != 0
	default:
		return true
	}
}
