package gate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/marcelocantos/donegate/internal/audit"
)

// outcome 0 = pass, 1 = fail, 2 = error.
func checksFor(outcomes []int) []Check {
	checks := make([]Check, len(outcomes))
	for i, o := range outcomes {
		checks[i] = Named(fmt.Sprintf("check-%d", i), func() (bool, error) {
			switch o {
			case 0:
				return true, nil
			case 1:
				return false, nil
			default:
				return false, errors.New("failure")
			}
		})
	}
	return checks
}

func TestDecisionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	outcomes := gen.SliceOf(gen.IntRange(0, 2))

	properties.Property("can_claim iff no check failed or errored", prop.ForAll(
		func(out []int) bool {
			d, err := NewRunner(nil).Enforce("p", checksFor(out))
			if err != nil {
				return false
			}
			wantFailed := 0
			for _, o := range out {
				if o != 0 {
					wantFailed++
				}
			}
			return d.CanClaim == (wantFailed == 0) &&
				len(d.Failed) == wantFailed &&
				d.CanClaim == (len(d.Failed) == 0)
		},
		outcomes,
	))

	properties.Property("every failing check name is reported in order", prop.ForAll(
		func(out []int) bool {
			d, _ := NewRunner(nil).Enforce("p", checksFor(out))
			j := 0
			for i, o := range out {
				if o == 0 {
					continue
				}
				if j >= len(d.Failed) || d.Failed[j] != fmt.Sprintf("check-%d", i) {
					return false
				}
				j++
			}
			return j == len(d.Failed)
		},
		outcomes,
	))

	properties.Property("audit shape: one ENFORCE, one terminal, one record per check", prop.ForAll(
		func(out []int) bool {
			rec := &recorder{}
			d, _ := NewRunner(rec).Enforce("p", checksFor(out))
			terminal := rec.count(audit.LevelPass) + rec.count(audit.LevelBlock)
			perCheck := rec.count(audit.LevelCheck) + rec.count(audit.LevelError)
			last := rec.records[len(rec.records)-1].level
			wantLast := audit.LevelBlock
			if d.CanClaim {
				wantLast = audit.LevelPass
			}
			return rec.count(audit.LevelEnforce) == 1 &&
				terminal == 1 &&
				perCheck == len(out) &&
				last == wantLast
		},
		outcomes,
	))

	properties.TestingRun(t)
}
