package core

import "testing"

func TestEvaluateBudget(t *testing.T) {
	cases := []struct {
		name          string
		total, budget int64
		want          AlertDecision
	}{
		{"no budget set", 10000, 0, AlertNone},
		{"under budget", 5000, 10000, AlertNone},
		{"exactly at budget", 10000, 10000, AlertNone},
		{"one cent over", 10001, 10000, AlertExceeded},
		{"far over", 99999, 100, AlertExceeded},
		{"zero total zero budget", 0, 0, AlertNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateBudget(Money{Cents: tc.total}, Money{Cents: tc.budget})
			if got != tc.want {
				t.Fatalf("EvaluateBudget(%d, %d) = %s, want %s", tc.total, tc.budget, got, tc.want)
			}
		})
	}
}
