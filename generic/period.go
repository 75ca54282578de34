package generic

import "time"

// =============================================================================
// PERIOD - An inclusive range of civil days
// =============================================================================

// Period is the inclusive day range [Start, End].
//
// Examples:
//   - Scheduling cycle for January 2026: 2025-12-26 - 2026-01-25
//   - Calendar month: the 1st - the last day
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains returns true if the day is within [Start, End].
func (p Period) Contains(t time.Time) bool {
	d := Truncate(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns every day in the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Validate rejects periods that end before they start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) String() string {
	return "[" + FormatDate(p.Start) + ", " + FormatDate(p.End) + "]"
}

// MonthPeriod returns the calendar month as a period.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}
