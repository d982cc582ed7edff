// Package stress hammers a delegate with concurrent registrations and
// invocations and checks that no registration is lost, duplicated or seen
// half-built.
package stress

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/delg/pkg/delegate"
	"github.com/arthur-debert/delg/pkg/errors"
	"github.com/arthur-debert/delg/pkg/lifetime"
	"github.com/arthur-debert/delg/pkg/logging"
	"golang.org/x/sync/errgroup"
)

// Options sets the shape of a run
type Options struct {
	// Adders is the number of goroutines, each adding one handler
	Adders int
	// Invokers is the number of goroutines invoking while adders run
	Invokers int
	// Invokes is the number of passes each invoker makes
	Invokes int
	// Mortal binds every Mortal-th handler to an owner that is closed
	// right after registration, while invokers are running. Zero binds none.
	Mortal int
}

// Report describes the outcome of a run
type Report struct {
	Options Options

	// Added is the number of handlers registered
	Added int
	// Closed is the number of owners closed during the run
	Closed int
	// Passes is the number of invocation passes made by invokers
	Passes int64
	// Calls is the number of handler calls made by invokers
	Calls int64
	// Partial counts calls to handlers whose setup had not completed
	Partial int64
	// Stored is the handler count after the final pass
	Stored int
	// FinalCalls is the number of handlers that ran in the final pass
	FinalCalls int
	// Repeated counts handlers that ran more than once in the final pass
	Repeated int
	// MortalCalls counts calls to handlers with closed owners in the final pass
	MortalCalls int

	Elapsed time.Duration
}

// Expected returns the number of handlers that must survive the run
func (r *Report) Expected() int {
	return r.Added - r.Closed
}

// Verify checks the report against the delegate's guarantees. Handlers of
// owners closed mid-run may have run in earlier passes; only the final pass
// must exclude them.
func (r *Report) Verify() error {
	var errs []error
	mismatch := func(ok bool, what string, want, got interface{}) {
		if !ok {
			errs = append(errs, errors.Newf(errors.ErrStressMismatch, "%s: want %v, got %v", what, want, got).
				WithDetail("want", want).
				WithDetail("got", got))
		}
	}

	mismatch(r.Stored == r.Expected(), "stored handlers", r.Expected(), r.Stored)
	mismatch(r.FinalCalls == r.Expected(), "handlers run in final pass", r.Expected(), r.FinalCalls)
	mismatch(r.Repeated == 0, "handlers run twice in one pass", 0, r.Repeated)
	mismatch(r.MortalCalls == 0, "handlers of closed owners run", 0, r.MortalCalls)
	mismatch(r.Partial == 0, "partially constructed entries observed", 0, r.Partial)

	return errors.Join(errs...)
}

// mortalCount is the number of adders whose handler gets a closable owner
func mortalCount(opts Options) int {
	if opts.Mortal <= 0 {
		return 0
	}
	return (opts.Adders + opts.Mortal - 1) / opts.Mortal
}

// tracker is the state captured by one registered handler
type tracker struct {
	// ready is plain on purpose: it is written before Add, and the
	// registry lock is what makes it visible to invoking goroutines.
	ready  bool
	mortal bool
	calls  atomic.Int64
	final  atomic.Int64
}

// pass tells handlers whether the current invocation is the final check
type pass struct {
	final bool
}

// Run executes one stress run. It returns early with the context's error
// if ctx is cancelled; delegate operations themselves cannot be cancelled.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Adders <= 0 {
		return nil, errors.New(errors.ErrInvalidInput, "stress run needs at least one adder")
	}

	logger := logging.GetLogger("stress")
	done := logging.LogOperationStart(logger, "stress")
	defer done()

	start := time.Now()
	d := delegate.New[pass](delegate.WithName("stress"))
	report := &Report{Options: opts}

	trackers := make([]*tracker, opts.Adders)
	mortal := make(chan *lifetime.Observer, opts.Adders)
	var partial, calls, passes, closed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)

	// Owners are closed as soon as their handler is registered, while
	// invokers are still running passes.
	g.Go(func() error {
		for n := mortalCount(opts); n > 0; n-- {
			select {
			case o := <-mortal:
				o.Close()
				closed.Add(1)
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < opts.Adders; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := &tracker{mortal: opts.Mortal > 0 && i%opts.Mortal == 0}
			handler := func(ps pass) {
				if !p.ready {
					partial.Add(1)
				}
				if ps.final {
					p.final.Add(1)
					return
				}
				p.calls.Add(1)
				calls.Add(1)
			}
			trackers[i] = p

			p.ready = true
			if p.mortal {
				o := &lifetime.Observer{}
				d.Add(handler, o)
				mortal <- o
			} else {
				d.Add(handler)
			}
			return nil
		})
	}

	for i := 0; i < opts.Invokers; i++ {
		g.Go(func() error {
			for n := 0; n < opts.Invokes; n++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				d.Invoke(pass{})
				passes.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "stress run interrupted")
	}

	report.Closed = int(closed.Load())

	d.Invoke(pass{final: true})

	report.Added = len(trackers)
	report.Stored = d.Len()
	report.Passes = passes.Load()
	report.Calls = calls.Load()
	report.Partial = partial.Load()
	for _, p := range trackers {
		n := int(p.final.Load())
		if n > 0 {
			report.FinalCalls++
		}
		if n > 1 {
			report.Repeated++
		}
		if p.mortal && n > 0 {
			report.MortalCalls++
		}
	}
	report.Elapsed = time.Since(start)

	logger.Info().
		Int("added", report.Added).
		Int("closed", report.Closed).
		Int("stored", report.Stored).
		Int64("passes", report.Passes).
		Int64("calls", report.Calls).
		Dur("elapsed", report.Elapsed).
		Msg("Stress run finished")

	return report, nil
}
