package actionz

// Distinct drops items whose key equals the key of the item before it.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type Distinct[T any, K comparable] struct {
	keyFunc     func(T) K
	onDuplicate func(T)
	unless      func(T) bool
	name        string
}

// NewDistinct creates an operator that suppresses consecutive duplicates.
// The keyFunc extracts a comparable key from each item. Only the most recent
// key is remembered, so a value that comes back after something else passes
// again.
//
// When to use:
//   - Skipping a lookup when the settled query did not change
//   - Ignoring repeated identical sensor readings
//
// Example:
//
//	// Deduplicate settled queries, case-insensitively
//	distinct := actionz.NewDistinct(strings.ToLower)
//
// Parameters:
//   - keyFunc: Function extracting the comparison key
func NewDistinct[T any, K comparable](keyFunc func(T) K) *Distinct[T, K] {
	return &Distinct[T, K]{
		keyFunc: keyFunc,
		name:    "distinct",
	}
}

// OnDuplicate registers fn to be called with every suppressed item.
func (d *Distinct[T, K]) OnDuplicate(fn func(T)) *Distinct[T, K] {
	d.onDuplicate = fn
	return d
}

// Unless registers a predicate that lets a duplicate through anyway when it
// returns true.
func (d *Distinct[T, K]) Unless(fn func(T) bool) *Distinct[T, K] {
	d.unless = fn
	return d
}

// WithName sets a custom name for this operator.
func (d *Distinct[T, K]) WithName(name string) *Distinct[T, K] {
	d.name = name
	return d
}

// Bind implements Operator.
func (d *Distinct[T, K]) Bind(_ *Scope, next func(T)) func(T) {
	var last K
	var seen bool

	return func(item T) {
		key := d.keyFunc(item)
		if seen && key == last && (d.unless == nil || !d.unless(item)) {
			if d.onDuplicate != nil {
				d.onDuplicate(item)
			}
			return
		}
		seen = true
		last = key
		next(item)
	}
}

// Name returns the operator name.
func (d *Distinct[T, K]) Name() string {
	return d.name
}
