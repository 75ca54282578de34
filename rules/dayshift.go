package rules

import (
	"github.com/shopspring/decimal"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// DAY SHIFT RULES
// =============================================================================

// DayShiftRules configures day-shift assignment.
type DayShiftRules struct {
	SkillMatching           SkillMatching  `json:"skillMatching"`
	DemandMatching          DemandMatching `json:"demandMatching"`
	CSPSolver               CSPSolver      `json:"cspSolver"`
	AvoidNightShiftConflict Toggle         `json:"avoidNightShiftConflict"`
}

// Toggle is a rule that is only switched on or off.
type Toggle struct {
	Enabled bool `json:"enabled"`
}

// SkillMatching requires assigned staff to carry skills. RequiredSkills is
// a set: duplicates are dropped, first occurrence order kept.
type SkillMatching struct {
	Enabled          bool            `json:"enabled"`
	RequiredSkills   []string        `json:"requiredSkills"`
	MinSkillCoverage decimal.Decimal `json:"minSkillCoverage"`
}

type DemandMatching struct {
	Enabled           bool `json:"enabled"`
	MatchByLocation   bool `json:"matchByLocation"`
	MatchByPersonType bool `json:"matchByPersonType"`
}

// CSPSolver bounds the external constraint solver's search.
type CSPSolver struct {
	Enabled        bool `json:"enabled"`
	MaxIterations  int  `json:"maxIterations"`
	BacktrackLimit int  `json:"backtrackLimit"`
}

func DefaultDayShiftRules() DayShiftRules {
	return DayShiftRules{
		SkillMatching: SkillMatching{
			Enabled:          true,
			RequiredSkills:   []string{},
			MinSkillCoverage: decimal.RequireFromString("0.8"),
		},
		DemandMatching: DemandMatching{
			Enabled:           true,
			MatchByLocation:   true,
			MatchByPersonType: true,
		},
		CSPSolver: CSPSolver{
			Enabled:        true,
			MaxIterations:  10000,
			BacktrackLimit: 1000,
		},
		AvoidNightShiftConflict: Toggle{Enabled: true},
	}
}

// HasSkill reports whether skill is required.
func (r DayShiftRules) HasSkill(skill string) bool {
	for _, s := range r.SkillMatching.RequiredSkills {
		if s == skill {
			return true
		}
	}
	return false
}

// DayShift is the day-shift rule store.
type DayShift struct {
	*Store[DayShiftRules]
}

func NewDayShift(storage generic.RuleStorage, opts ...Option) *DayShift {
	s := NewStore(generic.DomainDayShift, DefaultDayShiftRules, storage, opts...)
	s.normalize = func(r DayShiftRules) DayShiftRules {
		r.SkillMatching.RequiredSkills = uniqueStrings(r.SkillMatching.RequiredSkills)
		return r
	}
	s.validate = func(r DayShiftRules) error {
		if r.SkillMatching.MinSkillCoverage.IsNegative() || r.SkillMatching.MinSkillCoverage.GreaterThan(decimal.NewFromInt(1)) {
			return &ValidationError{Domain: generic.DomainDayShift, Field: "skillMatching.minSkillCoverage", Reason: "must be within [0,1]"}
		}
		if r.CSPSolver.MaxIterations < 0 || r.CSPSolver.BacktrackLimit < 0 {
			return &ValidationError{Domain: generic.DomainDayShift, Field: "cspSolver", Reason: "limits must not be negative"}
		}
		return nil
	}
	return &DayShift{Store: s}
}

// uniqueStrings drops duplicates and never returns nil.
func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
