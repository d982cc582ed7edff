// Package observable wraps a value together with a delegate that is fired
// whenever the value is written.
package observable

import (
	"sync"

	"github.com/arthur-debert/delg/pkg/delegate"
)

// Value holds a T and notifies its handlers with the new value on every
// Set. The embedded Delegate carries the usual rules: handlers may read the
// value with Get but must not call Set, Add or Remove on the same Value.
type Value[T any] struct {
	*delegate.Delegate[T]

	mu    sync.RWMutex
	value T
}

// New creates a Value holding initial
func New[T any](initial T, opts ...delegate.Option) *Value[T] {
	return &Value[T]{
		Delegate: delegate.New[T](opts...),
		value:    initial,
	}
}

// Get returns the current value
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores next and fires the delegate with it. The value lock is not
// held while handlers run.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.value = next
	v.mu.Unlock()

	v.Invoke(next)
}

// Update replaces the value with fn(current) and fires the delegate with
// the result. fn runs under the value lock and must not touch v.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	next := fn(v.value)
	v.value = next
	v.mu.Unlock()

	v.Invoke(next)
	return next
}
