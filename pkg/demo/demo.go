// Package demo walks through the delegate's behaviour step by step. The
// delg command renders the steps; tests assert on them.
package demo

import (
	"fmt"

	"github.com/arthur-debert/delg/pkg/delegate"
	"github.com/arthur-debert/delg/pkg/lifetime"
	"github.com/arthur-debert/delg/pkg/observable"
	"github.com/rs/zerolog"
)

// Step is one observation of the walkthrough
type Step struct {
	Title    string
	Detail   string
	Results  []string
	Handlers int
}

type panel struct {
	lifetime.Observer
	name string
}

func (p *panel) onClick(button string) string {
	return fmt.Sprintf("%s saw %s", p.name, button)
}

// counter is kept out of line so that its closures share one code pointer
// wherever it is called from.
//
//go:noinline
func counter(hits *int) func(int) {
	return func(n int) { *hits += n }
}

// Run executes the walkthrough. logger receives the delegates' own logs.
func Run(logger zerolog.Logger) []Step {
	var steps []Step
	record := func(title, detail string, results []string, handlers int) {
		steps = append(steps, Step{Title: title, Detail: detail, Results: results, Handlers: handlers})
	}

	clicked := delegate.NewFunc[string, string](delegate.WithName("clicked"), delegate.WithLogger(logger))
	left, right := &panel{name: "left"}, &panel{name: "right"}
	clicked.Add(left.onClick, left)
	clicked.Add(right.onClick, right)
	clicked.Add(func(button string) string { return "audit saw " + button })

	record("Register",
		"Two panels register with themselves as owners, an audit hook registers without one.",
		clicked.Invoke("ok"), clicked.Len())

	left.Close()
	record("Owner closed",
		"The left panel is closed. Its entry is still stored until the next pass walks it.",
		nil, clicked.Len())
	record("Invoke after close",
		"The pass skips and drops the left panel's handler; results keep registration order.",
		clicked.Invoke("cancel"), clicked.Len())

	hits := delegate.New[int](delegate.WithName("hits"), delegate.WithLogger(logger))
	var a, b, c int
	hits.Add(counter(&a))
	hits.Add(counter(&b))
	removed := hits.Remove(counter(&c))
	record("Identity collision",
		fmt.Sprintf("Two closures from one out-of-line factory were added; removing a third closure it made dropped %d.", removed),
		nil, hits.Len())

	hits.Add(counter(&a))
	h := hits.Add(counter(&b))
	hits.RemoveHandle(h)
	hits.Invoke(1)
	record("Exact removal",
		"The same pair re-added, then one removed by the handle Add returned.",
		[]string{fmt.Sprintf("a=%d", a), fmt.Sprintf("b=%d", b)}, hits.Len())

	volume := observable.New(3, delegate.WithName("volume"), delegate.WithLogger(logger))
	var heard []string
	volume.Add(func(v int) { heard = append(heard, fmt.Sprintf("volume=%d", v)) }, right)
	volume.Set(7)
	right.Close()
	volume.Set(9)
	record("Value holder",
		"A value fires its delegate on every Set; the right panel stopped listening after it closed.",
		append(heard, fmt.Sprintf("stored=%d", volume.Get())), volume.Len())

	clicked.Clear()
	record("Clear",
		"After Clear the delegate behaves like a new one.",
		clicked.Invoke("ok"), clicked.Len())

	return steps
}
