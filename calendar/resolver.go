package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// HOLIDAY TABLE
// =============================================================================

// HolidayTable maps YYYY-MM-DD to a holiday name within one year.
type HolidayTable map[string]string

// SpringFestivalDays is how many consecutive days a 春节 entry covers.
const SpringFestivalDays = 3

// fixedHolidays are the solar holidays, month -> day -> name.
var fixedHolidays = []struct {
	month    time.Month
	from, to int
	name     string
}{
	{time.January, 1, 1, NameNewYear},
	{time.May, 1, 3, NameLabor},
	{time.October, 1, 7, NameNationalDay},
}

// Resolver answers holiday questions against a lunar source.
type Resolver struct {
	lunar LunarSource
}

// NewResolver creates a resolver. A nil source behaves like NoLunarSource.
func NewResolver(lunar LunarSource) *Resolver {
	if lunar == nil {
		lunar = NoLunarSource{}
	}
	return &Resolver{lunar: lunar}
}

// Holidays builds the holiday table for a year: fixed holidays plus the
// year's lunar entries, with 春节 expanded to three days and clipped to the
// year.
func (r *Resolver) Holidays(year int) HolidayTable {
	table := make(HolidayTable)
	for _, fh := range fixedHolidays {
		for d := fh.from; d <= fh.to; d++ {
			table[generic.FormatDate(generic.NewDate(year, fh.month, d))] = fh.name
		}
	}

	for dateStr, name := range r.lunarEntries(year) {
		if name != NameSpringFestival {
			table[dateStr] = name
			continue
		}
		start, err := generic.ParseDate(dateStr)
		if err != nil {
			continue
		}
		for i := 0; i < SpringFestivalDays; i++ {
			d := start.AddDate(0, 0, i)
			if d.Year() == year {
				table[generic.FormatDate(d)] = name
			}
		}
	}
	return table
}

// lunarEntries returns the lunar source entries dated within year.
func (r *Resolver) lunarEntries(year int) map[string]string {
	prefix := fmt.Sprintf("%04d-", year)
	out := make(map[string]string)
	for d, name := range r.lunar.LunarHolidays() {
		if strings.HasPrefix(d, prefix) && IsValidDate(d) {
			out[d] = name
		}
	}
	return out
}

// =============================================================================
// LOOKUPS
// =============================================================================

// HolidayName returns the holiday on date, inferring the year from the date.
func (r *Resolver) HolidayName(date string) (string, bool) {
	return r.HolidayNameIn(date, 0)
}

// HolidayNameIn looks date up in the table of the given year (0 = the
// date's own year).
func (r *Resolver) HolidayNameIn(date string, year int) (string, bool) {
	t, err := generic.ParseDate(date)
	if err != nil {
		return "", false
	}
	if year == 0 {
		year = t.Year()
	}
	name, ok := r.Holidays(year)[date]
	return name, ok
}

func (r *Resolver) IsHoliday(date string) bool {
	_, ok := r.HolidayName(date)
	return ok
}

// IsFixedHoliday reports whether date is immovable when rest days are
// substituted. This is a strict subset of the holidays: only Oct 1-3 of the
// National Day week are fixed, 清明节/端午节/中秋节 only on the day itself, and
// 春节 for three days from its earliest date in the year.
func (r *Resolver) IsFixedHoliday(date string) bool {
	t, err := generic.ParseDate(date)
	if err != nil {
		return false
	}
	m, d := t.Month(), t.Day()
	switch {
	case m == time.January && d == 1:
		return true
	case m == time.May && d >= 1 && d <= 3:
		return true
	case m == time.October && d >= 1 && d <= 3:
		return true
	}

	var springStart time.Time
	for dateStr, name := range r.lunarEntries(t.Year()) {
		switch name {
		case NameQingming, NameDuanwu, NameZhongqiu:
			if dateStr == date {
				return true
			}
		case NameSpringFestival:
			s, err := generic.ParseDate(dateStr)
			if err != nil {
				continue
			}
			if springStart.IsZero() || s.Before(springStart) {
				springStart = s
			}
		}
	}
	if !springStart.IsZero() {
		diff := generic.DaysBetween(springStart, t)
		return diff >= 0 && diff < SpringFestivalDays
	}
	return false
}

// =============================================================================
// MONTH VIEW
// =============================================================================

// Day describes one calendar day.
type Day struct {
	Date         string `json:"date"`
	Weekday      string `json:"weekday"`
	Weekend      bool   `json:"weekend"`
	Holiday      string `json:"holiday,omitempty"`
	FixedHoliday bool   `json:"fixed_holiday"`
}

// Month lists every day of a calendar month with its weekend and holiday
// flags.
func (r *Resolver) Month(year int, month time.Month) []Day {
	holidays := r.Holidays(year)
	period := generic.MonthPeriod(year, month)
	days := make([]Day, 0, period.Len())
	for _, d := range period.Days() {
		ds := generic.FormatDate(d)
		days = append(days, Day{
			Date:         ds,
			Weekday:      d.Weekday().String(),
			Weekend:      generic.IsWeekend(d),
			Holiday:      holidays[ds],
			FixedHoliday: r.IsFixedHoliday(ds),
		})
	}
	return days
}
