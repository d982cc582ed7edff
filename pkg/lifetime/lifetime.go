package lifetime

import (
	"sync"
	"sync/atomic"
	"weak"
)

// nextID numbers tokens; registries log the ids of owners they prune.
var nextID atomic.Uint64

// Token is the shared flag an owner holds for as long as it is alive.
// Once invalidated a token never becomes alive again.
type Token struct {
	alive atomic.Bool
	id    uint64
}

// New creates a live token
func New() *Token {
	t := &Token{id: nextID.Add(1)}
	t.alive.Store(true)
	return t
}

// ID returns the process-unique token number
func (t *Token) ID() uint64 { return t.id }

// Alive reports whether the owner is still alive
func (t *Token) Alive() bool {
	return t != nil && t.alive.Load()
}

// Invalidate marks the owner as destroyed. Every Ref to the token reports
// expired from now on. Calling it more than once is harmless.
func (t *Token) Invalidate() {
	if t != nil {
		t.alive.Store(false)
	}
}

// Lifetime makes a bare token usable wherever an Owner is accepted
func (t *Token) Lifetime() *Token { return t }

// Ref returns a non-owning reference to the token
func (t *Token) Ref() Ref {
	if t == nil {
		return Ref{}
	}
	return Ref{ptr: weak.Make(t), id: t.id}
}

// Owner is anything that can hand out its lifetime token.
type Owner interface {
	Lifetime() *Token
}

// RefOf resolves an owner to a reference. A nil owner, or one without a
// token, resolves to a reference that is already expired.
func RefOf(o Owner) Ref {
	if o == nil {
		return Ref{}
	}
	return o.Lifetime().Ref()
}

// Ref is a weak reference to a Token. It does not keep the token alive: if
// the owner becomes unreachable without being closed, the garbage collector
// reclaims the token and the reference expires just the same. A handler
// that captures its owner keeps it reachable, and then only Invalidate
// expires the reference.
type Ref struct {
	ptr weak.Pointer[Token]
	id  uint64
}

// Expired reports whether the referenced owner is gone
func (r Ref) Expired() bool {
	return !r.ptr.Value().Alive()
}

// TokenID returns the id of the token this reference was made from, or 0
func (r Ref) TokenID() uint64 { return r.id }

// Observer can be embedded in any struct to make it an Owner.
//
//	type widget struct {
//		lifetime.Observer
//	}
//
//	w := &widget{}
//	d.Add(w.onChange, w)
//	w.Close() // handlers added with w are skipped and pruned
//
// An Observer must not be copied after first use.
type Observer struct {
	once  sync.Once
	token *Token
}

// Lifetime returns the observer's token, creating it on first use
func (o *Observer) Lifetime() *Token {
	o.once.Do(func() {
		o.token = New()
	})
	return o.token
}

// Alive reports whether Close has not been called yet
func (o *Observer) Alive() bool {
	return o.Lifetime().Alive()
}

// Close invalidates the observer's token
func (o *Observer) Close() {
	o.Lifetime().Invalidate()
}
