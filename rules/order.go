package rules

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// SCHEDULING ORDER RULES - The priority model handed to the solver
// =============================================================================

// RuleID names a rule group the solver applies in order.
type RuleID string

const (
	RuleNightShift      RuleID = "nightShift"
	RuleBasicRest       RuleID = "basicRest"
	RuleDayShift        RuleID = "dayShift"
	RuleFunctionBalance RuleID = "functionBalance"
)

// KnownRules lists every orderable rule in default order.
func KnownRules() []RuleID {
	return []RuleID{RuleNightShift, RuleBasicRest, RuleDayShift, RuleFunctionBalance}
}

// Strategy is how conflicts between rule groups are settled.
type Strategy string

const (
	StrategyPriority Strategy = "PRIORITY"
	StrategyBalance  Strategy = "BALANCE"
)

// SchedulingOrderRules is the scheduling priority model plus the basic rest
// rules.
type SchedulingOrderRules struct {
	SchedulingOrder    []RuleID                   `json:"schedulingOrder"`
	RuleWeights        map[RuleID]decimal.Decimal `json:"ruleWeights"`
	ConflictResolution ConflictResolution         `json:"conflictResolution"`
	BasicRestRules     BasicRestRules             `json:"basicRestRules"`
}

// ConflictResolution: with AllowOverride off a later rule group may only
// fill gaps left by an earlier one.
type ConflictResolution struct {
	Strategy      Strategy `json:"strategy"`
	AllowOverride bool     `json:"allowOverride"`
}

type BasicRestRules struct {
	MaxRestDays             int  `json:"maxRestDays"`
	MaxWeekendRestDays      int  `json:"maxWeekendRestDays"`
	MinLegalRestDays        int  `json:"minLegalRestDays"`
	AverageHolidayRest      bool `json:"averageHolidayRest"`
	FestivalPriorityScoring bool `json:"festivalPriorityScoring"`
}

func DefaultSchedulingOrderRules() SchedulingOrderRules {
	return SchedulingOrderRules{
		SchedulingOrder: KnownRules(),
		RuleWeights: map[RuleID]decimal.Decimal{
			RuleNightShift:      decimal.NewFromInt(100),
			RuleBasicRest:       decimal.NewFromInt(80),
			RuleDayShift:        decimal.NewFromInt(60),
			RuleFunctionBalance: decimal.NewFromInt(40),
		},
		ConflictResolution: ConflictResolution{
			Strategy:      StrategyPriority,
			AllowOverride: false,
		},
		BasicRestRules: BasicRestRules{
			MaxRestDays:             10,
			MaxWeekendRestDays:      4,
			MinLegalRestDays:        8,
			AverageHolidayRest:      true,
			FestivalPriorityScoring: true,
		},
	}
}

// Weight returns the weight of rule id, zero when unset.
func (r SchedulingOrderRules) Weight(id RuleID) decimal.Decimal {
	return r.RuleWeights[id]
}

// Validate checks that the order is a permutation of the known rules and
// that no weight is negative or unknown.
func (r SchedulingOrderRules) Validate() error {
	known := make(map[RuleID]bool)
	for _, id := range KnownRules() {
		known[id] = true
	}
	if len(r.SchedulingOrder) != len(known) {
		return &generic.PriorityModelError{Reason: fmt.Sprintf(
			"schedulingOrder has %d entries, want %d (%s)", len(r.SchedulingOrder), len(known), joinRules(KnownRules()))}
	}
	seen := make(map[RuleID]bool, len(r.SchedulingOrder))
	for _, id := range r.SchedulingOrder {
		if !known[id] {
			return &generic.PriorityModelError{Reason: fmt.Sprintf("unknown rule %q in schedulingOrder", id)}
		}
		if seen[id] {
			return &generic.PriorityModelError{Reason: fmt.Sprintf("rule %q listed twice in schedulingOrder", id)}
		}
		seen[id] = true
	}
	for id, w := range r.RuleWeights {
		if !known[id] {
			return &generic.PriorityModelError{Reason: fmt.Sprintf("weight for unknown rule %q", id)}
		}
		if w.IsNegative() {
			return &generic.PriorityModelError{Reason: fmt.Sprintf("weight of %q is negative", id)}
		}
	}
	switch r.ConflictResolution.Strategy {
	case StrategyPriority, StrategyBalance:
	default:
		return &generic.PriorityModelError{Reason: fmt.Sprintf("unknown strategy %q", r.ConflictResolution.Strategy)}
	}
	if r.BasicRestRules.MaxWeekendRestDays > r.BasicRestRules.MaxRestDays {
		return &ValidationError{Domain: generic.DomainSchedulingOrder, Field: "basicRestRules.maxWeekendRestDays", Reason: "exceeds maxRestDays"}
	}
	if r.BasicRestRules.MinLegalRestDays < 0 {
		return &ValidationError{Domain: generic.DomainSchedulingOrder, Field: "basicRestRules.minLegalRestDays", Reason: "must not be negative"}
	}
	return nil
}

func joinRules(ids []RuleID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// STORE
// =============================================================================

// SchedulingOrder is the scheduling-order rule store.
type SchedulingOrder struct {
	*Store[SchedulingOrderRules]
}

func NewSchedulingOrder(storage generic.RuleStorage, opts ...Option) *SchedulingOrder {
	s := NewStore(generic.DomainSchedulingOrder, DefaultSchedulingOrderRules, storage, opts...)
	s.normalize = func(r SchedulingOrderRules) SchedulingOrderRules {
		if r.RuleWeights == nil {
			r.RuleWeights = map[RuleID]decimal.Decimal{}
		}
		return r
	}
	s.validate = SchedulingOrderRules.Validate
	return &SchedulingOrder{Store: s}
}

// SchedulingOrder returns the current rule order.
func (o *SchedulingOrder) SchedulingOrder() []RuleID {
	return o.Rules().SchedulingOrder
}

// RuleWeight returns the weight of the named rule, zero when unset.
func (o *SchedulingOrder) RuleWeight(name string) decimal.Decimal {
	return o.Rules().Weight(RuleID(name))
}
