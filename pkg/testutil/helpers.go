// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/iwvelando/loan-gauge/pkg/mathutil"
)

// FindRow finds the row for a 1-based payment month.
// Returns a pointer to the row if found, nil otherwise.
func FindRow(schedule *amortization.Schedule, month int) *amortization.PaymentRow {
	if schedule == nil {
		return nil
	}
	for i := range schedule.Rows {
		if schedule.Rows[i].Month == month {
			return &schedule.Rows[i]
		}
	}
	return nil
}

// CheckScheduleInvariants reports every row that breaks the amortization
// invariants: constant payment, portions summing to the payment within a
// cent, non-negative interest, a non-increasing balance equal to principal
// less principal paid, and a zero final balance.
func CheckScheduleInvariants(t testing.TB, schedule *amortization.Schedule) {
	t.Helper()

	if schedule == nil || len(schedule.Rows) == 0 {
		t.Errorf("schedule has no rows")
		return
	}
	if want := schedule.Terms.Payments(); len(schedule.Rows) != want {
		t.Errorf("schedule has %d rows, expected %d", len(schedule.Rows), want)
	}

	payment := schedule.Rows[0].PaymentAmount
	previous := schedule.Terms.Principal
	for i, row := range schedule.Rows {
		if row.Month != i+1 {
			t.Errorf("row %d has month %d", i, row.Month)
		}
		if !row.PaymentAmount.Equal(payment) {
			t.Errorf("month %d payment %s differs from %s", row.Month, row.PaymentAmount, payment)
		}
		if !mathutil.DecimalWithinCent(row.PrincipalPortion.Add(row.InterestPortion), payment) {
			t.Errorf("month %d: principal %s + interest %s != payment %s",
				row.Month, row.PrincipalPortion, row.InterestPortion, payment)
		}
		if row.InterestPortion.IsNegative() {
			t.Errorf("month %d has negative interest %s", row.Month, row.InterestPortion)
		}
		if !row.RemainingBalance.Equal(schedule.Terms.Principal.Sub(row.CumulativePrincipal)) {
			t.Errorf("month %d balance %s != principal - principal paid %s",
				row.Month, row.RemainingBalance, row.CumulativePrincipal)
		}
		if row.RemainingBalance.GreaterThan(previous) {
			t.Errorf("month %d balance %s increased from %s", row.Month, row.RemainingBalance, previous)
		}
		if !row.CumulativeTotal.Equal(row.CumulativePrincipal.Add(row.CumulativeInterest)) {
			t.Errorf("month %d total paid %s != principal paid + interest paid", row.Month, row.CumulativeTotal)
		}
		previous = row.RemainingBalance
	}

	if !previous.IsZero() {
		t.Errorf("final balance %s, expected 0", previous)
	}
}
