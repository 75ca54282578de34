/*
ledger.go - Vacation statistics over personal-request records

PURPOSE:
  Answers "how many days has this person already asked for this month,
  and how many rest days remain?" for the scheduler and the admin views.
  The ledger keeps no state of its own: it reads a Book handed to it and
  asks the calendar resolver and the full-rest configuration for holiday
  facts.

REMAINING QUOTA:
  remaining = max(0, totalRestDays - (ANNUAL + LEGAL days in the month))

  Only ANNUAL and LEGAL days consume the rest quota. Other types (SICK,
  TRAINING, ...) are kept in the record for the night-shift conflict
  rules but never counted here.

MONTH SCOPE:
  A day belongs to a month when its YYYY-MM-DD key starts with the
  month's YYYY-MM prefix. Scheduling periods (26th to 25th) are not used.

SEE ALSO:
  - calendar/resolver.go: Holiday names
  - store/sqlite/requests.go: Persisted records
*/
package vacation

import (
	"sort"
	"strings"
	"time"

	"github.com/warp/roster-engine/calendar"
	"github.com/warp/roster-engine/generic"
)

// Ledger computes vacation statistics for one Book.
type Ledger struct {
	book     Book
	resolver *calendar.Resolver
	fullRest FullRestSource
}

// NewLedger creates a ledger. A nil resolver knows only the fixed holidays;
// a nil full-rest source makes IdentifySpecialHoliday return nil.
func NewLedger(book Book, resolver *calendar.Resolver, fullRest FullRestSource) *Ledger {
	if book == nil {
		book = Book{}
	}
	if resolver == nil {
		resolver = calendar.NewResolver(nil)
	}
	return &Ledger{book: book, resolver: resolver, fullRest: fullRest}
}

// =============================================================================
// PER-PERSON COUNTS
// =============================================================================

// UsedAnnualLeaveInMonth counts the ANNUAL days staffKey requested in m.
func (l *Ledger) UsedAnnualLeaveInMonth(staffKey string, m Month) int {
	return l.SpecifiedVacationDays(staffKey, m).AnnualDays
}

// SpecifiedVacationDays counts the ANNUAL and LEGAL days of staffKey in m.
func (l *Ledger) SpecifiedVacationDays(staffKey string, m Month) SpecifiedDays {
	var out SpecifiedDays
	prefix := m.Prefix()
	for date, t := range l.book[staffKey] {
		if !strings.HasPrefix(date, prefix) {
			continue
		}
		switch t {
		case LeaveAnnual:
			out.AnnualDays++
		case LeaveLegal:
			out.LegalDays++
		}
	}
	out.TotalDays = out.AnnualDays + out.LegalDays
	return out
}

// RemainingVacationDays is the rest quota left after the requested days,
// never negative.
func (l *Ledger) RemainingVacationDays(staffKey string, m Month, totalRestDays int) int {
	remaining := totalRestDays - l.SpecifiedVacationDays(staffKey, m).TotalDays
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AllRemainingVacationDays maps every staff key to its remaining quota.
func (l *Ledger) AllRemainingVacationDays(staff []Staff, m Month, totalRestDays int) map[string]int {
	out := make(map[string]int, len(staff))
	for _, s := range staff {
		key := s.Key()
		if key == "" {
			continue
		}
		out[key] = l.RemainingVacationDays(key, m, totalRestDays)
	}
	return out
}

// Account bundles the counts of one person for m.
func (l *Ledger) Account(staffKey string, m Month, totalRestDays int) Account {
	days := l.SpecifiedVacationDays(staffKey, m)
	return Account{
		UsedAnnualInMonth: days.AnnualDays,
		SpecifiedAnnual:   days.AnnualDays,
		SpecifiedLegal:    days.LegalDays,
		RemainingQuota:    l.RemainingVacationDays(staffKey, m, totalRestDays),
	}
}

// =============================================================================
// DISTRIBUTION
// =============================================================================

// VacationTypeDistribution tallies the ANNUAL and LEGAL days of one person.
func (l *Ledger) VacationTypeDistribution(staffKey string, m Month) Distribution {
	days := l.SpecifiedVacationDays(staffKey, m)
	return Distribution{Annual: days.AnnualDays, Legal: days.LegalDays, Total: days.TotalDays}
}

// AllVacationStats tallies the whole roster for m. Rows keep the roster's
// order.
func (l *Ledger) AllVacationStats(staff []Staff, m Month) RosterStats {
	stats := RosterStats{Month: m.Prefix(), Staff: make([]StaffStats, 0, len(staff))}
	for _, s := range staff {
		key := s.Key()
		if key == "" {
			continue
		}
		d := l.VacationTypeDistribution(key, m)
		stats.Staff = append(stats.Staff, StaffStats{Key: key, Name: s.Name, Distribution: d})
		stats.Totals = stats.Totals.add(d)
	}
	return stats
}

// RequestedDates lists the dates staffKey requested in m, sorted.
func (l *Ledger) RequestedDates(staffKey string, m Month) []string {
	prefix := m.Prefix()
	var dates []string
	for date := range l.book[staffKey] {
		if strings.HasPrefix(date, prefix) {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// IdentifySpecialHoliday returns the rest allotment of the holiday on date,
// or nil when date is not a named holiday or no full-rest configuration is
// available.
func (l *Ledger) IdentifySpecialHoliday(date string) *SpecialHoliday {
	name, ok := l.resolver.HolidayName(date)
	if !ok || l.fullRest == nil {
		return nil
	}
	cfg := l.fullRest.FullRestConfig()
	if cfg == nil {
		return nil
	}
	switch name {
	case calendar.NameSpringFestival:
		return &SpecialHoliday{Name: name, Days: cfg.SpecialHolidays.SpringFestival, Type: HolidayMajor}
	case calendar.NameNationalDay:
		return &SpecialHoliday{Name: name, Days: cfg.SpecialHolidays.NationalDay, Type: HolidayMajor}
	case calendar.NameNewYear, calendar.NameQingming, calendar.NameLabor, calendar.NameDuanwu, calendar.NameZhongqiu:
		return &SpecialHoliday{Name: name, Days: MinorHolidayDays, Type: HolidayMinor}
	}
	return nil
}

// =============================================================================
// CALENDAR COUNTS
// =============================================================================

// WorkDaysInMonth counts Monday to Friday. Holidays are not subtracted.
func WorkDaysInMonth(year int, month time.Month) int {
	return generic.DaysInMonth(year, month) - WeekendDaysInMonth(year, month)
}

// WeekendDaysInMonth counts Saturdays and Sundays.
func WeekendDaysInMonth(year int, month time.Month) int {
	n := 0
	for _, d := range generic.MonthPeriod(year, month).Days() {
		if generic.IsWeekend(d) {
			n++
		}
	}
	return n
}
