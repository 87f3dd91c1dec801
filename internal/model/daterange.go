// internal/model/daterange.go
package model

import (
	"time"

	custom_errors "commit-evidence/internal/errors"
)

// DateRange is an inclusive window of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange parses a day/month/year window. Both bounds empty means no
// filtering and returns nil; exactly one bound is an error.
func ParseDateRange(from, to string) (*DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, &custom_errors.InvalidDateRangeError{From: from, To: to, Reason: "date-from and date-to must be supplied together"}
	}

	f, err := time.Parse(DisplayDateLayout, from)
	if err != nil {
		return nil, &custom_errors.InvalidDateRangeError{From: from, To: to, Reason: "date-from must be in dd/mm/yyyy format"}
	}
	t, err := time.Parse(DisplayDateLayout, to)
	if err != nil {
		return nil, &custom_errors.InvalidDateRangeError{From: from, To: to, Reason: "date-to must be in dd/mm/yyyy format"}
	}
	if f.After(t) {
		return nil, &custom_errors.InvalidDateRangeError{From: from, To: to, Reason: "date-from is after date-to"}
	}

	return &DateRange{From: f, To: t}, nil
}

// Since returns the lower bound in the provider's filter format.
func (r DateRange) Since() string { return r.From.UTC().Format(FilterTimeLayout) }

// Until returns the upper bound in the provider's filter format.
func (r DateRange) Until() string { return r.To.UTC().Format(FilterTimeLayout) }

// Contains reports whether t falls on a day inside the window.
func (r DateRange) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(r.From) && !day.After(r.To)
}

// String renders the window in display format.
func (r DateRange) String() string {
	return r.From.Format(DisplayDateLayout) + " to " + r.To.Format(DisplayDateLayout)
}
