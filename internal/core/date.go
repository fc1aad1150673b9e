package core

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for a cost date. The zone-less ones are read in the
// report location.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses s with the accepted layouts. A blank s is a validation
// error; callers decide the default.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is empty", ErrValidation)
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q must be RFC 3339, 2006-01-02T15:04:05 or 2006-01-02", ErrValidation, s)
}
