package booking

import (
	"fmt"
	"strings"
	"time"
)

// StartOfDay truncates t to midnight of its calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween counts calendar days from a to b, ignoring time of day and
// DST shifts. It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"02-01-2006", // the mobile client's DD-MM-YYYY
}

// ParseDate accepts YYYY-MM-DD, RFC 3339 or DD-MM-YYYY and returns the start
// of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return StartOfDay(t, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
