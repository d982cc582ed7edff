package lifetime

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Observer
	label string
}

func TestTokenLifecycle(t *testing.T) {
	tok := New()
	ref := tok.Ref()

	assert.True(t, tok.Alive())
	assert.False(t, ref.Expired())
	assert.Equal(t, tok.ID(), ref.TokenID())

	tok.Invalidate()
	assert.False(t, tok.Alive())
	assert.True(t, ref.Expired())

	// no resurrection
	tok.Invalidate()
	assert.True(t, ref.Expired())
	assert.True(t, tok.Ref().Expired(), "refs made after invalidation start expired")
}

func TestTokenIDsAreUnique(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotZero(t, a.ID())
}

func TestNilOwnersAreExpired(t *testing.T) {
	var tok *Token

	tests := []struct {
		name string
		ref  Ref
	}{
		{"zero ref", Ref{}},
		{"nil owner", RefOf(nil)},
		{"nil token", tok.Ref()},
		{"owner with nil token", RefOf(tok)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.ref.Expired())
		})
	}

	assert.False(t, tok.Alive())
	tok.Invalidate() // must not panic
}

func TestObserverAsOwner(t *testing.T) {
	w := &widget{label: "w"}
	ref := RefOf(w)

	assert.True(t, w.Alive())
	assert.Same(t, w.Lifetime(), w.Lifetime(), "token is created once")
	assert.False(t, ref.Expired())

	w.Close()
	assert.False(t, w.Alive())
	assert.True(t, ref.Expired())
}

func TestObserverCloseBeforeUse(t *testing.T) {
	var o Observer
	o.Close()
	assert.False(t, o.Alive())
	assert.True(t, RefOf(&o).Expired())
}

func TestRefExpiresWhenOwnerIsCollected(t *testing.T) {
	ref := func() Ref {
		w := &widget{label: "short-lived"}
		return RefOf(w)
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return ref.Expired()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRefDoesNotExpireWhileOwnerIsReachable(t *testing.T) {
	w := &widget{label: "kept"}
	ref := RefOf(w)

	runtime.GC()
	runtime.GC()

	assert.False(t, ref.Expired())
	runtime.KeepAlive(w)
}
