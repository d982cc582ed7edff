package delegate

import "github.com/arthur-debert/delg/pkg/lifetime"

// Delegate is a multicast registry for handlers that return nothing.
//
// The zero value is ready to use and does not log. A Delegate must not be
// copied after first use. A handler must never call back into the Delegate
// that is invoking it: the lock is held for the whole pass and the call
// deadlocks.
type Delegate[A any] struct {
	reg registry[func(A)]
}

// Signal is a delegate for events that carry no arguments
type Signal = Delegate[struct{}]

// New creates a Delegate
func New[A any](opts ...Option) *Delegate[A] {
	d := &Delegate[A]{}
	d.reg.configure(opts)
	return d
}

// NewSignal creates a delegate for argument-less events
func NewSignal(opts ...Option) *Signal {
	return New[struct{}](opts...)
}

// Add appends fn to the end of the handler sequence. If owners are given,
// fn is only called while all of them are alive. Adding the same function
// twice registers it twice. A nil fn is ignored and yields the zero Handle.
func (d *Delegate[A]) Add(fn func(A), owners ...lifetime.Owner) Handle {
	return d.reg.add(fn, owners)
}

// Remove drops every handler whose function has the same code pointer as
// fn and returns how many were dropped. Closures compiled from the same
// literal are indistinguishable here, while copies of a literal inlined at
// different call sites never match each other. Use RemoveHandle to remove
// exactly one registration. Removing something that was never added is a
// no-op.
func (d *Delegate[A]) Remove(fn func(A)) int {
	return d.reg.remove(fn)
}

// RemoveHandle drops the registration h refers to. It reports false when
// the registration is already gone.
func (d *Delegate[A]) RemoveHandle(h Handle) bool {
	return d.reg.removeHandle(h)
}

// Clear drops every handler
func (d *Delegate[A]) Clear() {
	d.reg.clear()
}

// Len returns the number of stored handlers, including ones whose owners
// have expired but which have not been pruned yet.
func (d *Delegate[A]) Len() int {
	return d.reg.count()
}

// Prune drops handlers whose owners have expired and returns how many
func (d *Delegate[A]) Prune() int {
	return d.reg.prune()
}

// Invoke calls every live handler with arg, in registration order, on the
// calling goroutine. Handlers with expired owners are skipped and dropped.
func (d *Delegate[A]) Invoke(arg A) {
	d.reg.pass(func(fn func(A)) {
		fn(arg)
	})
}
