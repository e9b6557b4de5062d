package etl

import (
	"fmt"
	"time"
)

// DateFromUnix converts a Unix timestamp in seconds to its UTC calendar
// date, suitable for a DATE column.
func DateFromUnix(ts int64) time.Time {
	y, m, d := time.Unix(ts, 0).UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
