// Package classifier turns a subscription change notification into the single
// transition verdict that decides which downstream action runs.
package classifier

import (
	"github.com/flexprice/lifecycle/internal/domain/subscription"
)

// Verdict is the transition detected in a notification
type Verdict string

const (
	CancellationRequested Verdict = "cancellation_requested"
	CancellationReverted  Verdict = "cancellation_reverted"
	OtherChange           Verdict = "other_change"
)

// Changes reports which tracked attributes appear in the previous attributes.
// It is informational only and never drives a side effect.
type Changes struct {
	CancelAtPeriodEndChanged bool
	CurrentPeriodEndChanged  bool
	StatusChanged            bool
}

// Result is the classifier output
type Result struct {
	Verdict Verdict
	Changes Changes
}

// Classify applies the rules in order, the first match wins:
//  1. cancel at period end is set, or the status is canceled
//  2. cancel_at went from a value to null, or cancel_at_period_end went from true to false
//  3. anything else
func Classify(s *subscription.Snapshot) Result {
	changes := Changes{
		CancelAtPeriodEndChanged: s.Previous.CancelAtPeriodEnd.Present,
		CurrentPeriodEndChanged:  s.Previous.CurrentPeriodEnd.Present,
		StatusChanged:            s.Previous.Status.Present,
	}

	switch {
	case isCancellationRequested(s):
		return Result{Verdict: CancellationRequested, Changes: changes}
	case isCancellationReverted(s):
		return Result{Verdict: CancellationReverted, Changes: changes}
	default:
		return Result{Verdict: OtherChange, Changes: changes}
	}
}

func isCancellationRequested(s *subscription.Snapshot) bool {
	return s.CancelAtPeriodEnd || s.IsCanceled()
}

func isCancellationReverted(s *subscription.Snapshot) bool {
	prev := s.Previous

	cancelAtCleared := prev.CancelAt.Present && prev.CancelAt.Value != nil && s.CancelAt == nil
	periodEndCleared := prev.CancelAtPeriodEnd.Present && prev.CancelAtPeriodEnd.Value && !s.CancelAtPeriodEnd

	return cancelAtCleared || periodEndCleared
}
