package delegate

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arthur-debert/delg/pkg/lifetime"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subscriber struct {
	lifetime.Observer
	got []int
}

func (s *subscriber) onValue(v int) { s.got = append(s.got, v) }

func (s *subscriber) double(v int) int { return v * 2 }

// recorder returns a handler appending v to out. It is kept out of line so
// every handler it returns shares one code pointer.
//
//go:noinline
func recorder(out *[]int) func(int) {
	return func(v int) {
		*out = append(*out, v)
	}
}

// inlinableRecorder is recorder without the inlining restriction. Whether
// its handlers share a code pointer depends on how the caller was compiled.
func inlinableRecorder(out *[]int) func(int) {
	return func(v int) {
		*out = append(*out, v)
	}
}

func newQuiet[A any]() *Delegate[A] {
	return New[A](WithLogger(zerolog.Nop()))
}

func TestInvokeEmpty(t *testing.T) {
	t.Run("no-value delegate", func(t *testing.T) {
		d := newQuiet[int]()
		assert.NotPanics(t, func() { d.Invoke(1) })
		assert.Equal(t, 0, d.Len())
	})

	t.Run("value delegate", func(t *testing.T) {
		f := NewFunc[int, string]()
		got := f.Invoke(1)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("zero values", func(t *testing.T) {
		var d Delegate[int]
		var f Func[int, int]
		d.Invoke(1)
		assert.Empty(t, f.Invoke(1))

		calls := 0
		d.Add(func(int) { calls++ })
		d.Invoke(1)
		assert.Equal(t, 1, calls)
	})
}

func TestAddThenInvokeCallsOnce(t *testing.T) {
	d := newQuiet[string]()
	var got []string
	d.Add(func(s string) { got = append(got, s) })

	d.Invoke("x")

	assert.Equal(t, []string{"x"}, got)
}

func TestResultsFollowRegistrationOrder(t *testing.T) {
	f := NewFunc[int, string](WithLogger(zerolog.Nop()))
	f.Add(func(x int) string { return fmt.Sprintf("h1(%d)", x) })
	f.Add(func(x int) string { return fmt.Sprintf("h2(%d)", x) })
	f.Add(func(x int) string { return fmt.Sprintf("h3(%d)", x) })

	assert.Equal(t, []string{"h1(7)", "h2(7)", "h3(7)"}, f.Invoke(7))
	assert.Equal(t, []string{"h1(8)", "h2(8)", "h3(8)"}, f.Invoke(8), "order is stable across passes")
}

func TestDuplicateAddRegistersTwice(t *testing.T) {
	d := newQuiet[int]()
	var got []int
	h := recorder(&got)
	d.Add(h)
	d.Add(h)

	d.Invoke(3)

	assert.Equal(t, []int{3, 3}, got)
	assert.Equal(t, 2, d.Len())
}

func TestNilHandlerIgnored(t *testing.T) {
	d := newQuiet[int]()
	h := d.Add(nil)

	assert.False(t, h.Valid())
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, 0, d.Remove(nil))
}

func TestOwnerLifetime(t *testing.T) {
	d := newQuiet[int]()
	s := &subscriber{}
	d.Add(s.onValue, s)

	d.Invoke(1)
	assert.Equal(t, []int{1}, s.got)
	assert.Equal(t, 1, d.Len())

	s.Close()
	assert.Equal(t, 1, d.Len(), "pruning is lazy")

	d.Invoke(2)
	assert.Equal(t, []int{1}, s.got, "handler of a closed owner is not called")
	assert.Equal(t, 0, d.Len())
}

func TestPruningOnMutation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Delegate[int])
		wantLen int
	}{
		{"add", func(d *Delegate[int]) { d.Add(func(int) {}) }, 2},
		{"remove", func(d *Delegate[int]) { d.Remove(func(int) {}) }, 1},
		{"prune", func(d *Delegate[int]) { assert.Equal(t, 1, d.Prune()) }, 1},
		{"clear", func(d *Delegate[int]) { d.Clear() }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newQuiet[int]()
			s := &subscriber{}
			var kept []int
			d.Add(recorder(&kept))
			d.Add(s.onValue, s)
			require.Equal(t, 2, d.Len())

			s.Close()
			tt.mutate(d)

			assert.Equal(t, tt.wantLen, d.Len())
		})
	}
}

func TestOwnerCollectedWithoutClose(t *testing.T) {
	d := newQuiet[int]()
	calls := atomic.Int32{}

	func() {
		s := &subscriber{}
		d.Add(func(int) { calls.Add(1) }, s)
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		d.Invoke(0)
		return d.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestMethodValueKeepsOwnerReachable(t *testing.T) {
	d := newQuiet[int]()

	func() {
		s := &subscriber{}
		d.Add(s.onValue, s)
	}()

	// The stored method value references its receiver, so the owner's
	// token stays reachable and only Close can end the registration.
	for i := 0; i < 5; i++ {
		runtime.GC()
		d.Invoke(i)
	}
	assert.Equal(t, 1, d.Len())
}

func TestOwnersClosedDuringConcurrentInvokes(t *testing.T) {
	const owners = 200
	const invokers = 4
	const passes = 100

	d := newQuiet[int]()
	subs := make([]*subscriber, owners)
	for i := range subs {
		subs[i] = &subscriber{}
		d.Add(func(int) {}, subs[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < invokers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := 0; p < passes; p++ {
				d.Invoke(p)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, s := range subs {
			s.Close()
		}
	}()
	wg.Wait()

	calls := 0
	d.Add(func(int) { calls++ })
	d.Invoke(0)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, d.Len(), "every closed owner's handler was pruned")
}

func TestOwnerlessHandlersNeverExpire(t *testing.T) {
	d := newQuiet[int]()
	var got []int
	d.Add(recorder(&got))

	for i := 0; i < 3; i++ {
		runtime.GC()
		d.Invoke(i)
	}

	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, 0, d.Prune())
}

func TestAllOwnersMustBeAlive(t *testing.T) {
	d := newQuiet[int]()
	a, b := lifetime.New(), &subscriber{}
	calls := 0
	d.Add(func(int) { calls++ }, a, b)

	d.Invoke(0)
	require.Equal(t, 1, calls)

	a.Invalidate()
	d.Invoke(0)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, d.Len())
}

func TestOneOwnerBacksManyHandlers(t *testing.T) {
	f := NewFunc[int, int](WithLogger(zerolog.Nop()))
	s := &subscriber{}
	f.Add(s.double, s)
	f.Add(func(v int) int { return v + 1 }, s)
	f.Add(func(v int) int { return -v })

	assert.Equal(t, []int{10, 6, -5}, f.Invoke(5))

	s.Close()
	assert.Equal(t, []int{-5}, f.Invoke(5), "results only come from handlers that ran")
	assert.Equal(t, 1, f.Len())
}

func TestNilOwnerExpiresImmediately(t *testing.T) {
	d := newQuiet[int]()
	calls := 0
	d.Add(func(int) { calls++ }, nil)

	d.Invoke(0)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, d.Len())
}

func TestOwnerClosedDuringPass(t *testing.T) {
	d := newQuiet[int]()
	late := &subscriber{}
	d.Add(func(int) { late.Close() })
	d.Add(late.onValue, late)

	d.Invoke(1)

	assert.Empty(t, late.got, "liveness is checked right before each call")
	assert.Equal(t, 1, d.Len())
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	d := newQuiet[int]()
	var got []int
	d.Add(recorder(&got))

	removed := d.Remove(func(int) {})

	assert.Equal(t, 0, removed)
	assert.Equal(t, 1, d.Len())
	d.Invoke(4)
	assert.Equal(t, []int{4}, got)
}

func TestRemoveIdentityCollision(t *testing.T) {
	t.Run("closures of one literal", func(t *testing.T) {
		d := newQuiet[int]()
		var first, second, other []int
		d.Add(recorder(&first))
		d.Add(recorder(&second))

		// A fresh closure with unrelated state still matches both.
		removed := d.Remove(recorder(&other))

		assert.Equal(t, 2, removed)
		assert.Equal(t, 0, d.Len())
		d.Invoke(1)
		assert.Empty(t, first)
		assert.Empty(t, second)
	})

	t.Run("closures built at one site", func(t *testing.T) {
		d := newQuiet[int]()
		outs := make([][]int, 3)
		var handlers []func(int)
		for i := range outs {
			handlers = append(handlers, func(v int) { outs[i] = append(outs[i], v) })
		}
		d.Add(handlers[0])
		d.Add(handlers[1])

		assert.Equal(t, 2, d.Remove(handlers[2]))
		assert.Equal(t, 0, d.Len())
	})

	t.Run("inlinable factory", func(t *testing.T) {
		d := newQuiet[int]()
		var first, second, other []int
		d.Add(inlinableRecorder(&first))
		d.Add(inlinableRecorder(&second))

		// Inlined, each call site compiles its own copy of the literal and
		// nothing matches. Out of line, all three share a code pointer.
		removed := d.Remove(inlinableRecorder(&other))

		assert.Contains(t, []int{0, 2}, removed)
		assert.Equal(t, 2-removed, d.Len())
	})

	t.Run("method values of one method", func(t *testing.T) {
		d := newQuiet[int]()
		a, b := &subscriber{}, &subscriber{}
		d.Add(a.onValue, a)
		d.Add(b.onValue, b)

		assert.Equal(t, 2, d.Remove(a.onValue))
		assert.Equal(t, 0, d.Len())
	})

	t.Run("distinct literals do not collide", func(t *testing.T) {
		d := newQuiet[int]()
		var got []int
		keep := func(v int) { got = append(got, v) }
		drop := func(int) {}
		d.Add(keep)
		d.Add(drop)

		assert.Equal(t, 1, d.Remove(drop))
		d.Invoke(9)
		assert.Equal(t, []int{9}, got)
	})
}

func TestRemoveHandleIsExact(t *testing.T) {
	d := newQuiet[int]()
	var first, second []int
	h1 := d.Add(recorder(&first))
	d.Add(recorder(&second))

	assert.True(t, h1.Valid())
	assert.True(t, d.RemoveHandle(h1))
	assert.False(t, d.RemoveHandle(h1), "second removal finds nothing")
	assert.False(t, d.RemoveHandle(Handle{}))

	d.Invoke(2)
	assert.Empty(t, first)
	assert.Equal(t, []int{2}, second)
}

func TestHandlesDoNotCrossDelegates(t *testing.T) {
	a, b := newQuiet[int](), newQuiet[int]()
	h := a.Add(func(int) {})
	b.Add(func(int) {})

	assert.False(t, b.RemoveHandle(h))
	assert.Equal(t, 1, b.Len())
}

func TestClearMatchesFreshDelegate(t *testing.T) {
	d := newQuiet[int]()
	f := NewFunc[int, int](WithLogger(zerolog.Nop()))
	calls := 0
	d.Add(func(int) { calls++ })
	f.Add(func(v int) int { return v })

	d.Clear()
	f.Clear()

	d.Invoke(1)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, NewFunc[int, int]().Invoke(1), f.Invoke(1))
}

func TestSignal(t *testing.T) {
	s := NewSignal(WithName("refresh"), WithLogger(zerolog.Nop()))
	fired := 0
	s.Add(func(struct{}) { fired++ })

	s.Invoke(struct{}{})
	s.Invoke(struct{}{})

	assert.Equal(t, 2, fired)
}

func TestInvokeAsHandler(t *testing.T) {
	inner := newQuiet[int]()
	outer := newQuiet[int]()
	var got []int
	inner.Add(recorder(&got))
	outer.Add(inner.Invoke)

	outer.Invoke(5)

	assert.Equal(t, []int{5}, got)
}

func TestPanickingHandlerReleasesLock(t *testing.T) {
	d := newQuiet[int]()
	s := &subscriber{}
	var after []int
	d.Add(s.onValue, s)
	d.Add(func(int) { panic("boom") })
	d.Add(recorder(&after))
	s.Close()

	assert.PanicsWithValue(t, "boom", func() { d.Invoke(1) })

	assert.Equal(t, 2, d.Len(), "expired entry before the panic was pruned, the rest stay")
	assert.Empty(t, after)
}

func TestReentrantCallDeadlocks(t *testing.T) {
	d := newQuiet[int]()
	d.Add(func(int) {
		d.Len()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Invoke(0)
	}()

	select {
	case <-done:
		t.Fatal("a handler calling back into its own delegate must block")
	case <-time.After(50 * time.Millisecond):
	}
	// The blocked goroutine is abandoned; d is unusable from here on.
}

func TestLogsPrunes(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	d := New[int](WithName("clicks"), WithLogger(logger))
	s := &subscriber{}
	d.Add(s.onValue, s)
	s.Close()

	d.Invoke(0)

	out := buf.String()
	assert.Contains(t, out, "Pruned handlers with expired owners")
	assert.Contains(t, out, `"delegate":"clicks"`)
	assert.Contains(t, out, `"pruned":1`)
	assert.Contains(t, out, fmt.Sprintf(`"owners":[%d]`, s.Lifetime().ID()))
}

func TestConcurrentAddAndInvoke(t *testing.T) {
	const adders = 64
	const invokers = 8
	const passes = 50

	d := newQuiet[int]()
	var wg sync.WaitGroup
	var partial atomic.Int32
	counts := make([]atomic.Int32, adders)

	for i := 0; i < adders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Plain state written before Add; the registry lock publishes it.
			ready := false
			handler := func(int) {
				if !ready {
					partial.Add(1)
				}
				counts[i].Add(1)
			}
			ready = true
			d.Add(handler)
		}(i)
	}

	for i := 0; i < invokers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := 0; p < passes; p++ {
				d.Invoke(p)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, adders, d.Len())
	assert.Zero(t, partial.Load())

	before := make([]int32, adders)
	for i := range counts {
		before[i] = counts[i].Load()
	}
	d.Invoke(-1)
	for i := range counts {
		assert.Equal(t, before[i]+1, counts[i].Load(), "handler %d runs exactly once per pass", i)
	}
}

func TestConcurrentPassesDoNotInterleave(t *testing.T) {
	d := newQuiet[int]()
	var mu sync.Mutex
	var trace []int
	for i := 0; i < 5; i++ {
		d.Add(func(pass int) {
			mu.Lock()
			trace = append(trace, pass)
			mu.Unlock()
		})
	}

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			d.Invoke(p)
		}(p)
	}
	wg.Wait()

	require.Len(t, trace, 20)
	for i := 0; i < len(trace); i += 5 {
		for j := 1; j < 5; j++ {
			assert.Equal(t, trace[i], trace[i+j], "pass %d interleaved", trace[i])
		}
	}
}
