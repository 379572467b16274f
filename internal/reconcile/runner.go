package reconcile

import (
	"context"
	"fmt"
)

// FailurePolicy decides what a StateFailed outcome does to the rest of the
// run. Fatal errors always abort regardless of policy.
type FailurePolicy string

const (
	PolicyContinue FailurePolicy = "continue"
	PolicyAbort    FailurePolicy = "abort"
)

// Report aggregates the outcomes of one run.
type Report struct {
	Outcomes []Outcome
}

func (rep *Report) Count(state FinalState) int {
	n := 0
	for _, o := range rep.Outcomes {
		if o.FinalState == state {
			n++
		}
	}
	return n
}

func (rep *Report) Failed() bool {
	return rep.Count(StateFailed) > 0
}

// Runner drives the reconciler over a sequence of specs, one at a time.
// OnOutcome, when set, is called after each resource terminates so the CLI
// can stream status lines.
type Runner struct {
	Reconciler *Reconciler
	Policy     FailurePolicy
	OnOutcome  func(Outcome)
}

// Run reconciles every spec in order. It stops early on a fatal error, or
// on the first failed resource under PolicyAbort. The report always holds
// the outcomes of everything processed so far, including the failure that
// stopped the run.
func (r *Runner) Run(ctx context.Context, specs []ResourceSpec) (Report, error) {
	var rep Report
	for _, spec := range specs {
		outcome, err := r.Reconciler.Reconcile(ctx, spec)
		if err != nil {
			return rep, err
		}

		rep.Outcomes = append(rep.Outcomes, outcome)
		if r.OnOutcome != nil {
			r.OnOutcome(outcome)
		}

		if outcome.FinalState == StateFailed && r.Policy == PolicyAbort {
			return rep, fmt.Errorf("aborting run: %s failed (%s)", outcome.Resource, outcome.ErrorDetail)
		}
	}
	return rep, nil
}
