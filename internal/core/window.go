package core

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Window is an inclusive time range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// ValidateYearMonth checks a 1-indexed month and a four-digit-range year.
func ValidateYearMonth(year, month int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: %w %d", ErrValidation, ErrInvalidYear, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %w %d: must be between 1 and 12", ErrValidation, ErrInvalidMonth, month)
	}
	return nil
}

// MonthWindow returns the report window of a calendar month in loc: from the
// first instant of day 1 to one second before the first instant of the next
// month, both inclusive.
func MonthWindow(year, month int, loc *time.Location) (Window, error) {
	if err := ValidateYearMonth(year, month); err != nil {
		return Window{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	start := now.With(time.Date(year, time.Month(month), 1, 12, 0, 0, 0, loc)).BeginningOfMonth()
	next := time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: next.Add(-time.Second)}, nil
}

// Contains reports whether t lies inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
