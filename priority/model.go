/*
Package priority turns the scheduling-order rules into the contract handed
to the external solver.

PURPOSE:
  The solver applies rule groups (night shift, basic rest, day shift,
  function balance) in order. When two groups want different assignments
  for the same person and day, the conflict strategy decides:

  PRIORITY, AllowOverride=true:
    The group with the highest weight wins; equal weights fall back to
    the order.

  PRIORITY, AllowOverride=false:
    The first group in order that decided keeps its decision. Later groups
    only fill days nobody decided, whatever their weight.

  BALANCE:
    Decisions are combined by a weighted vote (sum of weights per value).
    This is the default objective; the real one belongs to the solver.

SEE ALSO:
  - rules/order.go: SchedulingOrderRules, the persisted form of the model
*/
package priority

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/roster-engine/rules"
)

// WeightedRule is one step of the solver plan.
type WeightedRule struct {
	Rule   rules.RuleID    `json:"rule"`
	Rank   int             `json:"rank"`
	Weight decimal.Decimal `json:"weight"`
}

// Model is a validated scheduling priority model.
type Model struct {
	order         []rules.RuleID
	weights       map[rules.RuleID]decimal.Decimal
	strategy      rules.Strategy
	allowOverride bool
}

// FromRules validates r and builds its model.
func FromRules(r rules.SchedulingOrderRules) (*Model, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		order:         append([]rules.RuleID(nil), r.SchedulingOrder...),
		weights:       make(map[rules.RuleID]decimal.Decimal, len(r.RuleWeights)),
		strategy:      r.ConflictResolution.Strategy,
		allowOverride: r.ConflictResolution.AllowOverride,
	}
	for id, w := range r.RuleWeights {
		m.weights[id] = w
	}
	return m, nil
}

func (m *Model) Strategy() rules.Strategy { return m.strategy }

func (m *Model) AllowOverride() bool { return m.allowOverride }

// Weight of rule id; zero when unset.
func (m *Model) Weight(id rules.RuleID) decimal.Decimal {
	return m.weights[id]
}

// Plan returns the rules in application order with their weights.
func (m *Model) Plan() []WeightedRule {
	plan := make([]WeightedRule, len(m.order))
	for i, id := range m.order {
		plan[i] = WeightedRule{Rule: id, Rank: i + 1, Weight: m.Weight(id)}
	}
	return plan
}

// =============================================================================
// CONFLICT RESOLUTION
// =============================================================================

// Candidate is the assignment one rule group wants for a person and day.
// An empty Value means the group made no decision.
type Candidate struct {
	Rule  rules.RuleID
	Value string
}

// Decision is the outcome of Resolve.
type Decision struct {
	Value   string       `json:"value"`
	Rule    rules.RuleID `json:"rule,omitempty"` // winning group; empty for a vote
	Decided bool         `json:"decided"`
}

// Resolve settles the candidates for one person and day. Candidates may
// arrive in any order; the model's order applies.
func (m *Model) Resolve(candidates []Candidate) Decision {
	decided := m.ordered(candidates)
	if len(decided) == 0 {
		return Decision{}
	}
	switch {
	case m.strategy == rules.StrategyBalance:
		return m.vote(decided)
	case m.allowOverride:
		return m.heaviest(decided)
	default:
		return Decision{Value: decided[0].Value, Rule: decided[0].Rule, Decided: true}
	}
}

// ordered drops undecided candidates and sorts the rest by rank. Rules
// outside the model rank last.
func (m *Model) ordered(candidates []Candidate) []Candidate {
	rank := make(map[rules.RuleID]int, len(m.order))
	for i, id := range m.order {
		rank[id] = i
	}
	rankOf := func(id rules.RuleID) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return len(m.order)
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Value != "" {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(out[i].Rule) < rankOf(out[j].Rule)
	})
	return out
}

func (m *Model) heaviest(decided []Candidate) Decision {
	best := decided[0]
	for _, c := range decided[1:] {
		if m.Weight(c.Rule).GreaterThan(m.Weight(best.Rule)) {
			best = c
		}
	}
	return Decision{Value: best.Value, Rule: best.Rule, Decided: true}
}

// vote sums weights per value. Ties go to the value whose first supporter
// ranks earliest.
func (m *Model) vote(decided []Candidate) Decision {
	totals := make(map[string]decimal.Decimal)
	var values []string
	for _, c := range decided {
		if _, ok := totals[c.Value]; !ok {
			values = append(values, c.Value)
			totals[c.Value] = decimal.Zero
		}
		totals[c.Value] = totals[c.Value].Add(m.Weight(c.Rule))
	}
	winner := values[0]
	for _, v := range values[1:] {
		if totals[v].GreaterThan(totals[winner]) {
			winner = v
		}
	}
	return Decision{Value: winner, Decided: true}
}
