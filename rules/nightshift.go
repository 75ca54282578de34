package rules

import (
	"github.com/shopspring/decimal"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// NIGHT SHIFT RULES - Big night shift assignment
// =============================================================================

// Sex selects the per-sex assignment lengths.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// NightShiftRules configures big night shift assignment.
type NightShiftRules struct {
	Assignment         BigNightAssignment `json:"bigNightAssignment"`
	HealthExclusion    HealthExclusion    `json:"healthExclusion"`
	Reduction          Reduction          `json:"reduction"`
	Compensation       Compensation       `json:"lastMonthCompensation"`
	YearlyDistribution YearlyDistribution `json:"yearlyDistribution"`
	Manpower           Manpower           `json:"manpower"`
	FemalePriority     FemalePriority     `json:"femalePriority"`
	LastMonthWeighting LastMonthWeighting `json:"lastMonthWeighting"`
	VacationConflict   VacationConflict   `json:"vacationConflict"`
}

// BigNightAssignment chooses continuous or distributed big nights and how
// many days each sex is assigned per cycle.
type BigNightAssignment struct {
	Continuous bool `json:"continuous"`
	MaleDays   int  `json:"maleDays"`
	FemaleDays int  `json:"femaleDays"`
}

type HealthExclusion struct {
	ExcludeMenstrual bool `json:"excludeMenstrual"`
	ExcludeLactation bool `json:"excludeLactation"`
	ExcludePregnancy bool `json:"excludePregnancy"`
}

// Reduction lowers the target of staff who were over-served, by Ratio.
type Reduction struct {
	Enabled bool            `json:"enabled"`
	Ratio   decimal.Decimal `json:"ratio"`
}

// Compensation favours staff whose prior-month big nights fell below
// Threshold.
type Compensation struct {
	Enabled   bool `json:"enabled"`
	Threshold int  `json:"threshold"`
}

type YearlyDistribution struct {
	Enabled bool `json:"enabled"`
	BySex   bool `json:"bySex"`
}

// Manpower: available/required >= SufficiencyThreshold means sufficient.
type Manpower struct {
	SufficiencyThreshold decimal.Decimal `json:"sufficiencyThreshold"`
}

// FemalePriority reduces a woman's target from NormalDays to ReducedDays
// when manpower is sufficient and she worked at least MinLastMonthDays big
// nights last month.
type FemalePriority struct {
	Enabled          bool `json:"enabled"`
	MinLastMonthDays int  `json:"minLastMonthDays"`
	NormalDays       int  `json:"normalDays"`
	ReducedDays      int  `json:"reducedDays"`
}

// LastMonthWeighting maps last month's big-night count to a priority tier.
type LastMonthWeighting struct {
	Enabled bool         `json:"enabled"`
	Tiers   []WeightTier `json:"tiers"`
}

// WeightTier matches counts <= Max, or >= Min. Exactly one bound is set.
type WeightTier struct {
	Max        *int `json:"max,omitempty"`
	Min        *int `json:"min,omitempty"`
	Priority   int  `json:"priority"`
	TargetDays int  `json:"targetDays"`
}

// Matches reports whether a prior-month count falls in the tier.
func (t WeightTier) Matches(days int) bool {
	if t.Max != nil && days > *t.Max {
		return false
	}
	if t.Min != nil && days < *t.Min {
		return false
	}
	return t.Max != nil || t.Min != nil
}

// VacationConflict excludes staff on leave from big nights. Strict types
// always exclude; waivable ones may be overridden when manpower is short.
type VacationConflict struct {
	Enabled       bool     `json:"enabled"`
	StrictTypes   []string `json:"strictTypes"`
	WaivableTypes []string `json:"waivableTypes"`
}

func intPtr(i int) *int { return &i }

func DefaultNightShiftRules() NightShiftRules {
	return NightShiftRules{
		Assignment: BigNightAssignment{Continuous: true, MaleDays: 4, FemaleDays: 3},
		HealthExclusion: HealthExclusion{
			ExcludeMenstrual: true,
			ExcludeLactation: true,
			ExcludePregnancy: true,
		},
		Reduction:          Reduction{Enabled: true, Ratio: decimal.RequireFromString("0.5")},
		Compensation:       Compensation{Enabled: true, Threshold: 2},
		YearlyDistribution: YearlyDistribution{Enabled: true, BySex: true},
		Manpower:           Manpower{SufficiencyThreshold: decimal.NewFromInt(1)},
		FemalePriority: FemalePriority{
			Enabled:          true,
			MinLastMonthDays: 3,
			NormalDays:       3,
			ReducedDays:      2,
		},
		LastMonthWeighting: LastMonthWeighting{
			Enabled: true,
			Tiers: []WeightTier{
				{Max: intPtr(0), Priority: 1, TargetDays: 4},
				{Max: intPtr(2), Priority: 2, TargetDays: 3},
				{Min: intPtr(3), Priority: 3, TargetDays: 2},
			},
		},
		VacationConflict: VacationConflict{
			Enabled:       true,
			StrictTypes:   []string{"ANNUAL", "LEGAL", "SICK", "MARRIAGE", "MATERNITY"},
			WaivableTypes: []string{"REQUEST", "TRAINING"},
		},
	}
}

// =============================================================================
// DERIVED DECISIONS
// =============================================================================

// IsManpowerSufficient compares available/required against the threshold.
// With nothing required, manpower is always sufficient.
func (r NightShiftRules) IsManpowerSufficient(available, required int) bool {
	if required <= 0 {
		return true
	}
	ratio := decimal.NewFromInt(int64(available)).Div(decimal.NewFromInt(int64(required)))
	return ratio.GreaterThanOrEqual(r.Manpower.SufficiencyThreshold)
}

// TargetBigNightDays returns how many big nights a person should get this
// cycle.
func (r NightShiftRules) TargetBigNightDays(sex Sex, sufficient bool, lastMonthDays int) int {
	if sex != SexFemale {
		return r.Assignment.MaleDays
	}
	fp := r.FemalePriority
	if !fp.Enabled {
		return r.Assignment.FemaleDays
	}
	if sufficient && lastMonthDays >= fp.MinLastMonthDays {
		return fp.ReducedDays
	}
	return fp.NormalDays
}

// TierFor returns the first weighting tier matching last month's count.
func (r NightShiftRules) TierFor(lastMonthDays int) (WeightTier, bool) {
	if !r.LastMonthWeighting.Enabled {
		return WeightTier{}, false
	}
	for _, t := range r.LastMonthWeighting.Tiers {
		if t.Matches(lastMonthDays) {
			return t, true
		}
	}
	return WeightTier{}, false
}

// IsStrictLeave reports whether a leave type always blocks a big night.
func (r NightShiftRules) IsStrictLeave(leaveType string) bool {
	return r.VacationConflict.Enabled && containsString(r.VacationConflict.StrictTypes, leaveType)
}

// IsWaivableLeave reports whether a leave type blocks a big night only when
// manpower allows it.
func (r NightShiftRules) IsWaivableLeave(leaveType string) bool {
	return r.VacationConflict.Enabled && containsString(r.VacationConflict.WaivableTypes, leaveType)
}

// HealthStatus of a staff member relevant to night-shift exclusion.
type HealthStatus struct {
	Menstrual bool
	Lactation bool
	Pregnancy bool
}

// ExcludedByHealth reports whether the status rules out big nights.
func (r NightShiftRules) ExcludedByHealth(h HealthStatus) bool {
	e := r.HealthExclusion
	return (e.ExcludeMenstrual && h.Menstrual) ||
		(e.ExcludeLactation && h.Lactation) ||
		(e.ExcludePregnancy && h.Pregnancy)
}

// ReducedTarget applies the reduction ratio to an over-served target,
// rounding down and never below zero.
func (r NightShiftRules) ReducedTarget(target int) int {
	if !r.Reduction.Enabled {
		return target
	}
	reduced := decimal.NewFromInt(int64(target)).Mul(decimal.NewFromInt(1).Sub(r.Reduction.Ratio)).Floor()
	if reduced.IsNegative() {
		return 0
	}
	return int(reduced.IntPart())
}

// =============================================================================
// STORE
// =============================================================================

// NightShift is the night-shift rule store.
type NightShift struct {
	*Store[NightShiftRules]
}

func NewNightShift(storage generic.RuleStorage, opts ...Option) *NightShift {
	s := NewStore(generic.DomainNightShift, DefaultNightShiftRules, storage, opts...)
	s.normalize = func(r NightShiftRules) NightShiftRules {
		if r.LastMonthWeighting.Tiers == nil {
			r.LastMonthWeighting.Tiers = []WeightTier{}
		}
		r.VacationConflict.StrictTypes = uniqueStrings(r.VacationConflict.StrictTypes)
		r.VacationConflict.WaivableTypes = uniqueStrings(r.VacationConflict.WaivableTypes)
		return r
	}
	s.validate = validateNightShift
	return &NightShift{Store: s}
}

func validateNightShift(r NightShiftRules) error {
	fail := func(field, reason string) error {
		return &ValidationError{Domain: generic.DomainNightShift, Field: field, Reason: reason}
	}
	if r.Assignment.MaleDays < 0 || r.Assignment.FemaleDays < 0 {
		return fail("bigNightAssignment", "days must not be negative")
	}
	if r.Reduction.Ratio.IsNegative() || r.Reduction.Ratio.GreaterThan(decimal.NewFromInt(1)) {
		return fail("reduction.ratio", "must be within [0,1]")
	}
	if r.Manpower.SufficiencyThreshold.IsNegative() {
		return fail("manpower.sufficiencyThreshold", "must not be negative")
	}
	for _, t := range r.LastMonthWeighting.Tiers {
		if (t.Max == nil) == (t.Min == nil) {
			return fail("lastMonthWeighting.tiers", "each tier needs exactly one of max or min")
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
