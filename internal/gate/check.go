// Package gate decides whether a task may be reported as complete.
//
// A caller hands a Runner an ordered set of named checks. The runner
// evaluates every one, records each outcome in the audit log, and returns a
// Decision that allows the completion claim only if every check passed.
package gate

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Predicate is a zero-argument test of some real-world condition.
// Returning an error counts as a failed check.
type Predicate func() (bool, error)

// Bool adapts a plain boolean function to a Predicate.
func Bool(fn func() bool) Predicate {
	return func() (bool, error) { return fn(), nil }
}

// Check is a named predicate. Names are unique within one Enforce call.
type Check struct {
	Name      string
	Predicate Predicate
}

// Named is shorthand for constructing a Check.
func Named(name string, p Predicate) Check {
	return Check{Name: name, Predicate: p}
}

// FromMap converts a map into checks sorted by name. Go maps have no
// iteration order, so sorting keeps audit output reproducible.
func FromMap(m map[string]Predicate) []Check {
	checks := make([]Check, 0, len(m))
	for name, p := range m {
		checks = append(checks, Check{Name: name, Predicate: p})
	}
	sort.Slice(checks, func(i, j int) bool {
		return checks[i].Name < checks[j].Name
	})
	return checks
}

// Result is the outcome of evaluating one check.
type Result struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Category string        `json:"error_category,omitempty"` // set only when the predicate errored
	Duration time.Duration `json:"duration_ns"`
}

// Errored reports whether the predicate errored rather than returning false.
func (r Result) Errored() bool {
	return r.Category != ""
}

// Decision is the aggregate verdict of one Enforce call.
type Decision struct {
	RunID    string   `json:"run_id"`
	Task     string   `json:"task"`
	CanClaim bool     `json:"can_claim"`
	Failed   []string `json:"failed_checks"` // evaluation order, never nil
	Results  []Result `json:"results"`
}

// Unpack returns the decision as the (can_claim, failed_checks) pair.
func (d Decision) Unpack() (bool, []string) {
	return d.CanClaim, d.Failed
}

// ValidationError reports a malformed check set. It is the only error
// Enforce returns.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid checks: " + strings.Join(e.Problems, "; ")
}

// Validate rejects empty names, nil predicates and duplicate names.
func Validate(checks []Check) error {
	var problems []string
	seen := make(map[string]int, len(checks))
	for i, c := range checks {
		switch {
		case c.Name == "":
			problems = append(problems, fmt.Sprintf("check %d: empty name", i))
		case c.Predicate == nil:
			problems = append(problems, fmt.Sprintf("check %q: nil predicate", c.Name))
		}
		if c.Name == "" {
			continue
		}
		if first, dup := seen[c.Name]; dup {
			problems = append(problems, fmt.Sprintf("check %q: duplicate name (checks %d and %d)", c.Name, first, i))
			continue
		}
		seen[c.Name] = i
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
