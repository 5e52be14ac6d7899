package actionz

// Mapper transforms each item from one type to another.
type Mapper[In, Out any] struct {
	fn   func(In) Out
	name string
}

// NewMapper creates an operator that converts every item with fn.
//
// Example:
//
//	// Normalize settled input before building a request
//	trim := actionz.NewMapper("trim", strings.TrimSpace)
//
// Parameters:
//   - name: Descriptive name for debugging and monitoring
//   - fn: Pure transformation function from input to output type
func NewMapper[In, Out any](name string, fn func(In) Out) *Mapper[In, Out] {
	return &Mapper[In, Out]{
		fn:   fn,
		name: name,
	}
}

// Bind implements Operator.
func (m *Mapper[In, Out]) Bind(_ *Scope, next func(Out)) func(In) {
	return func(item In) {
		next(m.fn(item))
	}
}

// Name returns the operator name.
func (m *Mapper[In, Out]) Name() string {
	return m.name
}
