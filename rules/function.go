package rules

import (
	"context"
	"fmt"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// FUNCTION BALANCE RULES
// =============================================================================

// BalanceStrategy says how hard the deviation limits are.
type BalanceStrategy string

const (
	BalanceStrict   BalanceStrategy = "strict"
	BalanceFlexible BalanceStrategy = "flexible"
)

// FunctionCategory is the first tier of the function taxonomy.
type FunctionCategory string

const (
	CategoryOnline          FunctionCategory = "online"
	CategoryBusinessSupport FunctionCategory = "businessSupport"
)

// FunctionBalanceRules configures even distribution of function (specialty
// task) assignments.
type FunctionBalanceRules struct {
	Enabled           bool             `json:"enabled"`
	BalancedFunctions []string         `json:"balancedFunctions"`
	MaxDeviation      MaxDeviation     `json:"maxDeviation"`
	Priority          int              `json:"priority"`
	Strategy          BalanceStrategy  `json:"strategy"`
	Functions         FunctionTaxonomy `json:"functions"`
	Advanced          AdvancedBalance  `json:"advanced"`
}

// MaxDeviation is the permitted distance from the mean assignment count.
type MaxDeviation struct {
	Monthly int `json:"monthly"`
	Yearly  int `json:"yearly"`
}

type FunctionTaxonomy struct {
	Online          []FunctionDef `json:"online"`
	BusinessSupport []FunctionDef `json:"businessSupport"`
}

type FunctionDef struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DefaultBalanced bool   `json:"defaultBalanced"`
}

// AdvancedBalance options. ConflictResolution picks the winner when
// balancing and manpower coverage disagree: "manpower" or "balance".
type AdvancedBalance struct {
	PostOptimization   bool   `json:"postOptimization"`
	ConflictResolution string `json:"conflictResolution"`
	LogWarnings        bool   `json:"logWarnings"`
	ShowMetrics        bool   `json:"showMetrics"`
}

func defaultTaxonomy() FunctionTaxonomy {
	return FunctionTaxonomy{
		Online: []FunctionDef{
			{ID: "A1", Name: "A1", DefaultBalanced: true},
			{ID: "A", Name: "A", DefaultBalanced: true},
			{ID: "B", Name: "B", DefaultBalanced: true},
			{ID: "C", Name: "C", DefaultBalanced: false},
			{ID: "D", Name: "D", DefaultBalanced: false},
			{ID: "E", Name: "E", DefaultBalanced: false},
		},
		BusinessSupport: []FunctionDef{
			{ID: "F", Name: "业务支持F", DefaultBalanced: false},
			{ID: "G", Name: "业务支持G", DefaultBalanced: false},
			{ID: "H", Name: "业务支持H", DefaultBalanced: false},
		},
	}
}

func DefaultFunctionBalanceRules() FunctionBalanceRules {
	tax := defaultTaxonomy()
	var balanced []string
	for _, f := range tax.all() {
		if f.def.DefaultBalanced {
			balanced = append(balanced, f.def.ID)
		}
	}
	return FunctionBalanceRules{
		Enabled:           true,
		BalancedFunctions: balanced,
		MaxDeviation:      MaxDeviation{Monthly: 2, Yearly: 5},
		Priority:          5,
		Strategy:          BalanceFlexible,
		Functions:         tax,
		Advanced: AdvancedBalance{
			PostOptimization:   true,
			ConflictResolution: "manpower",
			LogWarnings:        true,
			ShowMetrics:        true,
		},
	}
}

type categorized struct {
	category FunctionCategory
	def      FunctionDef
}

func (t FunctionTaxonomy) all() []categorized {
	out := make([]categorized, 0, len(t.Online)+len(t.BusinessSupport))
	for _, f := range t.Online {
		out = append(out, categorized{CategoryOnline, f})
	}
	for _, f := range t.BusinessSupport {
		out = append(out, categorized{CategoryBusinessSupport, f})
	}
	return out
}

// Lookup finds a function by id.
func (t FunctionTaxonomy) Lookup(id string) (FunctionDef, FunctionCategory, bool) {
	for _, f := range t.all() {
		if f.def.ID == id {
			return f.def, f.category, true
		}
	}
	return FunctionDef{}, "", false
}

// IsBalanced reports whether function id takes part in balancing.
func (r FunctionBalanceRules) IsBalanced(id string) bool {
	return r.Enabled && containsString(r.BalancedFunctions, id)
}

// WithinDeviation reports whether count is close enough to mean under the
// monthly limit. Flexible strategy allows one extra assignment.
func (r FunctionBalanceRules) WithinDeviation(count int, mean float64) bool {
	limit := float64(r.MaxDeviation.Monthly)
	if r.Strategy == BalanceFlexible {
		limit++
	}
	diff := float64(count) - mean
	if diff < 0 {
		diff = -diff
	}
	return diff <= limit
}

// =============================================================================
// STORE
// =============================================================================

// FunctionBalance is the function-balance rule store.
type FunctionBalance struct {
	*Store[FunctionBalanceRules]
}

func NewFunctionBalance(storage generic.RuleStorage, opts ...Option) *FunctionBalance {
	s := NewStore(generic.DomainFunctionBalance, DefaultFunctionBalanceRules, storage, opts...)
	s.normalize = func(r FunctionBalanceRules) FunctionBalanceRules {
		r.BalancedFunctions = uniqueStrings(r.BalancedFunctions)
		if r.Functions.Online == nil {
			r.Functions.Online = []FunctionDef{}
		}
		if r.Functions.BusinessSupport == nil {
			r.Functions.BusinessSupport = []FunctionDef{}
		}
		return r
	}
	s.validate = func(r FunctionBalanceRules) error {
		fail := func(field, reason string) error {
			return &ValidationError{Domain: generic.DomainFunctionBalance, Field: field, Reason: reason}
		}
		if r.Strategy != BalanceStrict && r.Strategy != BalanceFlexible {
			return fail("strategy", fmt.Sprintf("must be %q or %q", BalanceStrict, BalanceFlexible))
		}
		if r.MaxDeviation.Monthly < 0 || r.MaxDeviation.Yearly < 0 {
			return fail("maxDeviation", "must not be negative")
		}
		switch r.Advanced.ConflictResolution {
		case "manpower", "balance":
		default:
			return fail("advanced.conflictResolution", `must be "manpower" or "balance"`)
		}
		return nil
	}
	return &FunctionBalance{Store: s}
}

// IsFunctionBalanced reports whether function id is balanced under the
// current rules.
func (f *FunctionBalance) IsFunctionBalanced(id string) bool {
	return f.Rules().IsBalanced(id)
}

// FunctionConfig returns the taxonomy entry of function id.
func (f *FunctionBalance) FunctionConfig(id string) (FunctionDef, FunctionCategory, bool) {
	return f.Rules().Functions.Lookup(id)
}

// AddBalancedFunction adds id to the balanced set. The whole list is
// written back because lists replace wholesale on merge.
func (f *FunctionBalance) AddBalancedFunction(ctx context.Context, id string) (generic.UpdateResult, error) {
	rules := f.Rules()
	if _, _, ok := rules.Functions.Lookup(id); !ok {
		return generic.UpdateResult{}, fmt.Errorf("%w: %q", ErrUnknownFunction, id)
	}
	return f.SetBalancedFunctions(ctx, append(rules.BalancedFunctions, id))
}

// RemoveBalancedFunction drops id from the balanced set.
func (f *FunctionBalance) RemoveBalancedFunction(ctx context.Context, id string) (generic.UpdateResult, error) {
	rules := f.Rules()
	kept := make([]string, 0, len(rules.BalancedFunctions))
	for _, b := range rules.BalancedFunctions {
		if b != id {
			kept = append(kept, b)
		}
	}
	return f.SetBalancedFunctions(ctx, kept)
}

// SetBalancedFunctions replaces the balanced set.
func (f *FunctionBalance) SetBalancedFunctions(ctx context.Context, ids []string) (generic.UpdateResult, error) {
	list := make([]any, 0, len(ids))
	for _, id := range ids {
		list = append(list, id)
	}
	return f.UpdateRules(ctx, generic.Tree{"balancedFunctions": list})
}
