package core

// AlertDecision is the outcome of comparing a monthly total against a user's
// budget threshold.
type AlertDecision string

const (
	AlertNone     AlertDecision = "none"
	AlertExceeded AlertDecision = "exceeded"
)

// EvaluateBudget decides whether a monthly total breaches the budget.
// A zero budget is the "no limit set" sentinel and never alerts. Equality
// does not alert either; only strict excess does.
func EvaluateBudget(total, budget Money) AlertDecision {
	if budget.Cents > 0 && total.Cents > budget.Cents {
		return AlertExceeded
	}
	return AlertNone
}
