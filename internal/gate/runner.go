package gate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marcelocantos/donegate/internal/audit"
)

// Observer is notified of every check result and every decision.
type Observer interface {
	ObserveResult(task string, r Result)
	ObserveDecision(d Decision)
}

// Runner evaluates check sets and records every attempt in the audit log.
// A Runner holds no per-call state and may be shared.
type Runner struct {
	sink     audit.Sink
	clock    func() time.Time
	newID    func() string
	observer Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the clock used to time checks.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) { r.clock = clock }
}

// WithRunID overrides run ID generation.
func WithRunID(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

// WithObserver attaches an observer, e.g. a metrics collector.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// NewRunner creates a runner logging to sink. A nil sink discards records.
func NewRunner(sink audit.Sink, opts ...Option) *Runner {
	if sink == nil {
		sink = audit.Discard
	}
	r := &Runner{
		sink:  sink,
		clock: time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enforce runs every check in order and decides whether task may be claimed
// complete. A failing, erroring or panicking predicate becomes a failed
// result; Enforce itself only fails for a malformed check set, in which case
// nothing is evaluated or logged.
//
// An empty check set passes.
func (r *Runner) Enforce(task string, checks []Check) (Decision, error) {
	if err := Validate(checks); err != nil {
		return Decision{}, err
	}

	d := Decision{
		RunID:    r.newID(),
		Task:     task,
		CanClaim: true,
		Failed:   []string{},
		Results:  make([]Result, 0, len(checks)),
	}

	r.sink.Log(audit.LevelEnforce, "GATE ENFORCING: "+task)

	for _, c := range checks {
		res := r.evaluate(c)
		d.Results = append(d.Results, res)
		if !res.Passed {
			d.CanClaim = false
			d.Failed = append(d.Failed, c.Name)
		}

		switch {
		case res.Errored():
			r.sink.Log(audit.LevelError, fmt.Sprintf("  %s: ✗ ERROR (%s)", c.Name, res.Category))
		case res.Passed:
			r.sink.Log(audit.LevelCheck, fmt.Sprintf("  %s: ✓ PASS", c.Name))
		default:
			r.sink.Log(audit.LevelCheck, fmt.Sprintf("  %s: ✗ FAIL", c.Name))
		}
		if r.observer != nil {
			r.observer.ObserveResult(task, res)
		}
	}

	if d.CanClaim {
		r.sink.Log(audit.LevelPass, fmt.Sprintf("GATE PASSED: %s - OK TO CLAIM DONE", task))
	} else {
		r.sink.Log(audit.LevelBlock, fmt.Sprintf("GATE BLOCKED: %s - %s", task, strings.Join(d.Failed, ", ")))
	}
	if r.observer != nil {
		r.observer.ObserveDecision(d)
	}
	return d, nil
}

func (r *Runner) evaluate(c Check) Result {
	start := r.clock()
	ok, err := invoke(c.Predicate)
	res := Result{
		Name:     c.Name,
		Passed:   ok && err == nil,
		Duration: r.clock().Sub(start),
	}
	if err != nil {
		res.Category = Category(err)
	}
	return res
}

// invoke calls p, converting a panic into a categorised error.
func invoke(p Predicate) (ok bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			ok = false
			err = WithCategory(CategoryPanic, fmt.Errorf("predicate panicked: %v", v))
		}
	}()
	return p()
}
