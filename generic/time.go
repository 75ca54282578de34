package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// DATES - Day-granularity helpers (every date in this system is a civil day)
// =============================================================================

// DateLayout is the ISO date format used for every date key.
const DateLayout = "2006-01-02"

// NewDate builds a UTC midnight date. Out-of-range months and days roll over
// the way time.Date does (month 0 is December of the previous year).
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string. Dates that do not exist on the
// calendar (2026-02-30) are rejected.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// Today returns the current civil date in UTC.
func Today() time.Time {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Truncate drops the time of day.
func Truncate(t time.Time) time.Time { return NewDate(t.Year(), t.Month(), t.Day()) }

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysBetween returns the number of whole days from -> to (negative when to
// is earlier).
func DaysBetween(from, to time.Time) int {
	return int(Truncate(to).Sub(Truncate(from)).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) time.Time { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) time.Time {
	return NewDate(year, month+1, 1).AddDate(0, 0, -1)
}

func DaysInMonth(year int, month time.Month) int { return EndOfMonth(year, month).Day() }
