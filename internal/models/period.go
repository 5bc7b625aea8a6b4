package models

import (
	"fmt"
	"time"
)

// periodLayout is the year-month layout used for period keys.
const periodLayout = "2006-01"

// Period is a calendar-month bucket in "YYYY-MM" form.
type Period string

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period(t.Format(periodLayout))
}

// ParsePeriod validates s and returns it as a Period.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return PeriodOf(t), nil
}

// Valid reports whether p is a well-formed period key.
func (p Period) Valid() bool {
	_, err := time.Parse(periodLayout, string(p))
	return err == nil
}

// Start returns the first instant of the period in UTC.
func (p Period) Start() time.Time {
	t, _ := time.Parse(periodLayout, string(p))
	return t
}

// Prev returns the previous calendar month.
func (p Period) Prev() Period {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

func (p Period) String() string {
	return string(p)
}
