package testutil

import (
	"testing"

	"github.com/iwvelando/loan-gauge/pkg/amortization"
	"github.com/shopspring/decimal"
)

// recorder captures failures instead of failing the enclosing test.
type recorder struct {
	testing.TB
	failures int
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(string, ...interface{}) {
	r.failures++
}

func sampleSchedule(t *testing.T) *amortization.Schedule {
	t.Helper()

	schedule, err := amortization.GenerateSchedule(decimal.NewFromInt(1200), decimal.RequireFromString("0.05"), 1)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	return schedule
}

func TestFindRow(t *testing.T) {
	schedule := sampleSchedule(t)

	tests := []struct {
		name        string
		month       int
		expectFound bool
	}{
		{"First month", 1, true},
		{"Last month", 12, true},
		{"Month zero", 0, false},
		{"Past the term", 13, false},
		{"Negative month", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := FindRow(schedule, tt.month)
			if !tt.expectFound {
				if row != nil {
					t.Errorf("FindRow(%d) expected nil, got month %d", tt.month, row.Month)
				}
				return
			}
			if row == nil {
				t.Fatalf("FindRow(%d) returned nil", tt.month)
			}
			if row.Month != tt.month {
				t.Errorf("FindRow(%d) returned month %d", tt.month, row.Month)
			}
		})
	}
}

func TestFindRowReturnsPointer(t *testing.T) {
	schedule := sampleSchedule(t)

	found := FindRow(schedule, 3)
	if found != &schedule.Rows[2] {
		t.Errorf("FindRow() should return pointer to original element")
	}
}

func TestFindRowNilSchedule(t *testing.T) {
	if row := FindRow(nil, 1); row != nil {
		t.Errorf("FindRow() with nil schedule should return nil, got %v", row)
	}
}

func TestCheckScheduleInvariantsPasses(t *testing.T) {
	rec := &recorder{TB: t}
	CheckScheduleInvariants(rec, sampleSchedule(t))
	if rec.failures != 0 {
		t.Errorf("expected a generated schedule to pass, got %d failures", rec.failures)
	}
}

func TestCheckScheduleInvariantsReportsTampering(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(*amortization.Schedule)
	}{
		{"changed payment", func(s *amortization.Schedule) {
			s.Rows[4].PaymentAmount = s.Rows[4].PaymentAmount.Add(decimal.NewFromInt(1))
		}},
		{"negative interest", func(s *amortization.Schedule) {
			s.Rows[0].InterestPortion = decimal.NewFromInt(-1)
		}},
		{"unpaid balance", func(s *amortization.Schedule) {
			s.Rows[11].RemainingBalance = decimal.NewFromInt(1)
		}},
		{"missing row", func(s *amortization.Schedule) {
			s.Rows = s.Rows[:11]
		}},
		{"empty schedule", func(s *amortization.Schedule) {
			s.Rows = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := sampleSchedule(t)
			tt.tamper(schedule)

			rec := &recorder{TB: t}
			CheckScheduleInvariants(rec, schedule)
			if rec.failures == 0 {
				t.Errorf("expected invariant failures for %s", tt.name)
			}
		})
	}
}
