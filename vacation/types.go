// Package vacation derives per-person leave statistics and remaining rest
// quotas from personal-request records.
package vacation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

// LeaveType is the kind of a requested day.
type LeaveType string

const (
	LeaveAnnual    LeaveType = "ANNUAL"
	LeaveLegal     LeaveType = "LEGAL"
	LeaveSick      LeaveType = "SICK"
	LeaveMarriage  LeaveType = "MARRIAGE"
	LeaveMaternity LeaveType = "MATERNITY"
	LeaveRequest   LeaveType = "REQUEST"
	LeaveTraining  LeaveType = "TRAINING"
)

// LeaveTypes lists the known leave types.
func LeaveTypes() []LeaveType {
	return []LeaveType{LeaveAnnual, LeaveLegal, LeaveSick, LeaveMarriage, LeaveMaternity, LeaveRequest, LeaveTraining}
}

// ErrInvalidLeaveType is returned for a leave tag that is not an
// upper-case identifier.
var ErrInvalidLeaveType = errors.New("invalid leave type")

var leaveTagPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,31}$`)

// ParseLeaveType validates a leave tag. Besides the built-in types any
// upper-case tag is accepted; the ledger only counts ANNUAL and LEGAL.
func ParseLeaveType(s string) (LeaveType, error) {
	if !leaveTagPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q, want an upper-case tag such as ANNUAL", ErrInvalidLeaveType, s)
	}
	return LeaveType(s), nil
}

// Known reports whether t is one of LeaveTypes.
func (t LeaveType) Known() bool {
	for _, k := range LeaveTypes() {
		if k == t {
			return true
		}
	}
	return false
}

// =============================================================================
// RECORDS
// =============================================================================

// Record maps YYYY-MM-DD to the leave type requested for that day.
type Record map[string]LeaveType

// Book holds the records of a roster, keyed by Staff.Key().
type Book map[string]Record

// Set records a request, creating the staff member's record if needed.
func (b Book) Set(staffKey, date string, t LeaveType) {
	rec, ok := b[staffKey]
	if !ok {
		rec = make(Record)
		b[staffKey] = rec
	}
	rec[date] = t
}

// Staff is a roster member. Records are keyed by ID, or StaffID when the
// member has no ID yet.
type Staff struct {
	ID      string `json:"id,omitempty"`
	StaffID string `json:"staffId,omitempty"`
	Name    string `json:"name"`
	Sex     string `json:"sex,omitempty"`
}

func (s Staff) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.StaffID
}

// =============================================================================
// MONTH - The yearMonth every statistic is scoped to
// =============================================================================

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

var yearMonthPattern = regexp.MustCompile(`^(\d{4})-?(\d{2})$`)

// ParseMonth accepts "202601" and "2026-01".
func ParseMonth(s string) (Month, error) {
	m := yearMonthPattern.FindStringSubmatch(s)
	if m == nil {
		return Month{}, fmt.Errorf("%w: month %q, want YYYYMM or YYYY-MM", generic.ErrInvalidPeriod, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: month %q out of range", generic.ErrInvalidPeriod, s)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// MustParseMonth is ParseMonth for constants; it panics on bad input.
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Prefix is the YYYY-MM prefix of every date key in the month.
func (m Month) Prefix() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

func (m Month) String() string { return m.Prefix() }

// =============================================================================
// RESULTS
// =============================================================================

// SpecifiedDays counts the requested ANNUAL and LEGAL days of a month.
type SpecifiedDays struct {
	AnnualDays int `json:"annualDays"`
	LegalDays  int `json:"legalDays"`
	TotalDays  int `json:"totalDays"`
}

// Distribution is the per-type tally of a month.
type Distribution struct {
	Annual int `json:"ANNUAL"`
	Legal  int `json:"LEGAL"`
	Total  int `json:"total"`
}

func (d Distribution) add(o Distribution) Distribution {
	return Distribution{Annual: d.Annual + o.Annual, Legal: d.Legal + o.Legal, Total: d.Total + o.Total}
}

// Account is the derived vacation position of one person for a month.
type Account struct {
	UsedAnnualInMonth int `json:"usedAnnualInMonth"`
	SpecifiedAnnual   int `json:"specifiedAnnual"`
	SpecifiedLegal    int `json:"specifiedLegal"`
	RemainingQuota    int `json:"remainingQuota"`
}

// StaffStats is one row of the roster statistics.
type StaffStats struct {
	Key          string       `json:"key"`
	Name         string       `json:"name"`
	Distribution Distribution `json:"distribution"`
}

// RosterStats aggregates a month over the whole roster.
type RosterStats struct {
	Month  string       `json:"month"`
	Staff  []StaffStats `json:"staff"`
	Totals Distribution `json:"totals"`
}

// =============================================================================
// SPECIAL HOLIDAYS
// =============================================================================

// HolidayClass separates the long holidays from the short ones.
type HolidayClass string

const (
	HolidayMajor HolidayClass = "MAJOR"
	HolidayMinor HolidayClass = "MINOR"
)

// MinorHolidayDays is the fixed allotment of every MINOR holiday.
const MinorHolidayDays = 3

// SpecialHoliday is the rest allotment attached to a named holiday.
type SpecialHoliday struct {
	Name string       `json:"name"`
	Days int          `json:"days"`
	Type HolidayClass `json:"type"`
}

// FullRestConfig carries the configurable MAJOR holiday allotments.
type FullRestConfig struct {
	SpecialHolidays SpecialHolidayDays `json:"specialHolidays"`
}

type SpecialHolidayDays struct {
	SpringFestival int `json:"SPRING_FESTIVAL"`
	NationalDay    int `json:"NATIONAL_DAY"`
}

// FullRestSource supplies the full-rest configuration; nil means none.
type FullRestSource interface {
	FullRestConfig() *FullRestConfig
}

// StaticFullRest is a fixed FullRestSource.
type StaticFullRest FullRestConfig

func (s StaticFullRest) FullRestConfig() *FullRestConfig {
	c := FullRestConfig(s)
	return &c
}
