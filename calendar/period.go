/*
Package calendar resolves scheduling periods and the holiday calendar.

PURPOSE:
  Pure date arithmetic for the roster: which scheduling cycle comes next,
  which days a cycle spans, which days are public holidays and which of
  those are immovable when rest days are substituted.

SCHEDULING CYCLE:
  A cycle runs from the 26th of the previous month to the 25th of the
  named month, inclusive. The 25th is also the planning cutoff: up to and
  including the 25th the next cycle to plan is next month's; from the 26th
  it is the month after.

  Cycle "2026-01" = 2025-12-26 .. 2026-01-25

HOLIDAYS:
  Fixed solar holidays are built in. Lunar holidays (春节, 清明节, 端午节,
  中秋节) come from a LunarSource, because their dates are not computable
  from the Gregorian calendar alone.

SEE ALSO:
  - resolver.go: Holiday table construction and lookups
  - lunar.go:    Lunar holiday sources
*/
package calendar

import (
	"fmt"
	"time"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// CALENDAR PERIOD - Identifies one scheduling cycle
// =============================================================================

// CutoffDay is the last day of the month that still plans the next month.
const CutoffDay = 25

// Period identifies a scheduling cycle by the month it ends in.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Validate checks month ∈ [1,12].
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", generic.ErrInvalidPeriod, p.Month)
	}
	return nil
}

// YearMonth formats the period as "YYYYMM".
func (p Period) YearMonth() string { return fmt.Sprintf("%04d%02d", p.Year, p.Month) }

func (p Period) String() string { return fmt.Sprintf("%04d-%02d", p.Year, p.Month) }

// TargetPeriod returns the cycle to plan on the given day: next month up to
// the cutoff, the month after next from the 26th on.
func TargetPeriod(today time.Time) Period {
	year := today.Year()
	month := int(today.Month())
	if today.Day() <= CutoffDay {
		month++
	} else {
		month += 2
	}
	year += (month - 1) / 12
	month = (month-1)%12 + 1
	return Period{Year: year, Month: month}
}

// SchedulePeriod returns the window of the cycle ending in year/month:
// the 26th of the previous month through the 25th.
func SchedulePeriod(year, month int) generic.Period {
	return generic.Period{
		Start: generic.NewDate(year, time.Month(month-1), CutoffDay+1),
		End:   generic.NewDate(year, time.Month(month), CutoffDay),
	}
}

// Window is SchedulePeriod for p.
func (p Period) Window() generic.Period { return SchedulePeriod(p.Year, p.Month) }

// IsValidDate reports whether s is a YYYY-MM-DD date that exists on the
// calendar.
func IsValidDate(s string) bool {
	_, err := generic.ParseDate(s)
	return err == nil
}
