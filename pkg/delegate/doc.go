// Package delegate implements multicast callback registries.
//
// A Delegate[A] holds handlers of type func(A) and calls every one of them,
// in registration order, when Invoke is called. A Func[A, R] does the same
// for handlers of type func(A) R and collects the results into a slice.
// Signatures with several arguments use a struct for A; signatures without
// arguments use struct{} (see Signal).
//
// Handlers may be bound to one or more owners (see package lifetime). Once
// any owner of a handler is closed, the handler is no longer called and its
// entry is dropped the next time the registry walks its entries: on Invoke,
// Add, Remove or Prune. There is no background sweep. An owner that is
// dropped without Close also expires once it is garbage collected, but only
// if nothing keeps it reachable. A handler that is a method value of its
// owner, or a closure capturing it, keeps the owner alive through the
// registry itself, so Close is the reliable way to end a registration.
//
//	type panel struct {
//		lifetime.Observer
//	}
//
//	resized := delegate.New[Size]()
//	p := &panel{}
//	resized.Add(p.onResize, p)
//	resized.Invoke(Size{W: 80, H: 24}) // p.onResize runs
//	p.Close()
//	resized.Invoke(Size{W: 100, H: 30}) // p.onResize is skipped and pruned
//
// Two hazards are part of the contract and are not papered over:
//
// Reentrancy. Every operation, Invoke included, holds the registry's lock
// for its whole duration, so an invocation pass is atomic with respect to
// registration and to other passes. A handler that calls Add, Remove,
// RemoveHandle, Clear, Len, Prune or Invoke on the registry that is
// currently invoking it deadlocks. Defer such work to after Invoke returns.
//
// Identity. Remove(fn) matches handlers by the code pointer of fn as
// compiled. Closures produced by one function literal at one call site
// share a code pointer, as do all method values of the same method, so
// Remove can drop handlers other than the one the caller had in mind. The
// compiler decides the rest: when a small factory returning a closure is
// inlined, every call site gets its own copy of the literal and closures
// from different sites no longer match. Add returns a Handle;
// RemoveHandle(h) removes exactly that registration and does not depend on
// how the code was compiled.
//
// Operator forms map onto methods: "+=" is Add, "-=" is Remove and calling
// the delegate is Invoke. The method value d.Invoke is an ordinary func(A)
// and can itself be registered elsewhere.
package delegate
