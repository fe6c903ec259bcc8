// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-gauge/pkg/constants"
)

const (
	// DateTimeLayout is the format of payment month labels.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseMonth parses a YYYY-MM month.
func ParseMonth(date string) (time.Time, error) {
	t, err := time.Parse(DateTimeLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected month in YYYY-MM format, got %q", date)
	}
	return t, nil
}

// MonthLabels returns n consecutive YYYY-MM labels beginning at start, one per
// payment. An empty start yields nil.
func MonthLabels(start string, n int) ([]string, error) {
	if start == "" || n <= 0 {
		return nil, nil
	}
	first, err := ParseMonth(start)
	if err != nil {
		return nil, err
	}

	labels := make([]string, n)
	for i := range labels {
		labels[i] = first.AddDate(0, i, 0).Format(DateTimeLayout)
	}
	return labels, nil
}
