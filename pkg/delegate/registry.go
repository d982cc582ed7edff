package delegate

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/arthur-debert/delg/pkg/lifetime"
	"github.com/rs/zerolog"
)

// handleSeq is global so a Handle from one delegate never matches an entry
// of another.
var handleSeq atomic.Uint64

// Handle identifies a single registration. The zero Handle matches nothing.
type Handle struct {
	id uint64
}

// Valid reports whether the handle refers to a registration that was made.
// It says nothing about whether that registration is still present.
func (h Handle) Valid() bool { return h.id != 0 }

// entry is one registered handler and the owners it depends on
type entry[F any] struct {
	id     uint64
	key    uintptr
	fn     F
	owners []lifetime.Ref
}

// expiredOwner returns the token id of the first owner of the entry that
// is gone. Entries with no owners never expire.
func (e *entry[F]) expiredOwner() (uint64, bool) {
	for _, o := range e.owners {
		if o.Expired() {
			return o.TokenID(), true
		}
	}
	return 0, false
}

// registry is the ordered handler sequence shared by Delegate and Func.
// One mutex guards everything, invocation passes included.
type registry[F any] struct {
	mu      sync.Mutex
	entries []entry[F]
	name    string
	logger  zerolog.Logger
}

func (r *registry[F]) configure(opts []Option) {
	r.name, r.logger = resolve(opts)
}

// funcKey returns the code pointer of fn, or 0 for nil and non-functions
func funcKey(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return 0
	}
	return v.Pointer()
}

func (r *registry[F]) add(fn F, owners []lifetime.Owner) Handle {
	key := funcKey(fn)
	if key == 0 {
		r.logger.Warn().Msg("Ignoring nil handler")
		return Handle{}
	}

	// Owners are resolved before locking: Lifetime is caller code.
	refs := make([]lifetime.Ref, 0, len(owners))
	for _, o := range owners {
		refs = append(refs, lifetime.RefOf(o))
	}

	e := entry[F]{
		id:     handleSeq.Add(1),
		key:    key,
		fn:     fn,
		owners: refs,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := r.pruneLocked()
	r.entries = append(r.entries, e)

	r.logger.Trace().
		Uint64("handle", e.id).
		Int("owners", len(refs)).
		Int("pruned", pruned).
		Int("handlers", len(r.entries)).
		Msg("Handler added")

	return Handle{id: e.id}
}

func (r *registry[F]) remove(fn F) int {
	key := funcKey(fn)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	var pruned []uint64
	r.entries = slices.DeleteFunc(r.entries, func(e entry[F]) bool {
		if key != 0 && e.key == key {
			removed++
			return true
		}
		if id, gone := e.expiredOwner(); gone {
			pruned = append(pruned, id)
			return true
		}
		return false
	})

	r.logPrune(pruned)
	r.logger.Trace().
		Int("removed", removed).
		Int("handlers", len(r.entries)).
		Msg("Handlers removed by identity")

	return removed
}

func (r *registry[F]) removeHandle(h Handle) bool {
	if !h.Valid() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.entries, func(e entry[F]) bool { return e.id == h.id })
	if i < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, i, i+1)

	r.logger.Trace().
		Uint64("handle", h.id).
		Int("handlers", len(r.entries)).
		Msg("Handler removed by handle")

	return true
}

func (r *registry[F]) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	r.entries = nil

	r.logger.Trace().Int("cleared", n).Msg("Handlers cleared")
}

func (r *registry[F]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

func (r *registry[F]) prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pruneLocked()
}

// pruneLocked drops expired entries, keeping the order of the rest
func (r *registry[F]) pruneLocked() int {
	var pruned []uint64
	r.entries = slices.DeleteFunc(r.entries, func(e entry[F]) bool {
		id, gone := e.expiredOwner()
		if gone {
			pruned = append(pruned, id)
		}
		return gone
	})
	r.logPrune(pruned)
	return len(pruned)
}

// pass runs one invocation pass: every entry is checked right before it
// would be called, expired ones are erased in place and live ones are
// handed to call. The lock is held until the pass ends. If a handler
// panics the lock is released and the entries not yet visited remain.
func (r *registry[F]) pass(call func(F)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		return
	}

	invoked := 0
	var pruned []uint64
	for i := 0; i < len(r.entries); {
		if id, gone := r.entries[i].expiredOwner(); gone {
			r.entries = slices.Delete(r.entries, i, i+1)
			pruned = append(pruned, id)
			continue
		}
		call(r.entries[i].fn)
		invoked++
		i++
	}

	r.logPrune(pruned)
	r.logger.Trace().
		Int("invoked", invoked).
		Int("pruned", len(pruned)).
		Msg("Invocation pass")
}

// logPrune reports dropped entries with the token ids of the owners that
// had expired
func (r *registry[F]) logPrune(owners []uint64) {
	if len(owners) == 0 {
		return
	}
	r.logger.Debug().
		Int("pruned", len(owners)).
		Uints64("owners", owners).
		Int("handlers", len(r.entries)).
		Msg("Pruned handlers with expired owners")
}
