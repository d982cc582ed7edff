package delegate

import "github.com/arthur-debert/delg/pkg/lifetime"

// Func is a multicast registry for handlers that return a value. Invoke
// collects one result per live handler.
//
// The same rules as for Delegate apply: the zero value is usable, it must
// not be copied after first use, and handlers must not call back into it.
type Func[A, R any] struct {
	reg registry[func(A) R]
}

// NewFunc creates a Func
func NewFunc[A, R any](opts ...Option) *Func[A, R] {
	f := &Func[A, R]{}
	f.reg.configure(opts)
	return f
}

// Add appends fn to the end of the handler sequence, bound to owners
func (f *Func[A, R]) Add(fn func(A) R, owners ...lifetime.Owner) Handle {
	return f.reg.add(fn, owners)
}

// Remove drops every handler sharing fn's compiled code pointer and returns
// how many
func (f *Func[A, R]) Remove(fn func(A) R) int {
	return f.reg.remove(fn)
}

// RemoveHandle drops the registration h refers to
func (f *Func[A, R]) RemoveHandle(h Handle) bool {
	return f.reg.removeHandle(h)
}

// Clear drops every handler
func (f *Func[A, R]) Clear() {
	f.reg.clear()
}

// Len returns the number of stored handlers, pruned or not
func (f *Func[A, R]) Len() int {
	return f.reg.count()
}

// Prune drops handlers whose owners have expired and returns how many
func (f *Func[A, R]) Prune() int {
	return f.reg.prune()
}

// Invoke calls every live handler with arg and returns their results in
// registration order. Skipped handlers contribute nothing, so the result
// has exactly one element per handler that ran. With no handlers the
// result is an empty, non-nil slice.
func (f *Func[A, R]) Invoke(arg A) []R {
	results := []R{}
	f.reg.pass(func(fn func(A) R) {
		results = append(results, fn(arg))
	})
	return results
}
