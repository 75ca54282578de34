package rules

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/generic"
)

// Domain is the untyped view of a rule store, used by adapters that pick
// a domain by its identifier.
type Domain interface {
	ID() generic.DomainID
	Init(ctx context.Context) InitOutcome
	Tree() generic.Tree
	UpdateRules(ctx context.Context, partial generic.Tree) (generic.UpdateResult, error)
	ResetToDefault(ctx context.Context) generic.UpdateResult
	ExportRules() (string, error)
	ImportRules(ctx context.Context, data string) bool
	Dirty() bool
	Flush(ctx context.Context) bool
}

var (
	_ Domain = (*Store[DayShiftRules])(nil)
	_ Domain = (*Store[NightShiftRules])(nil)
	_ Domain = (*Store[FunctionBalanceRules])(nil)
	_ Domain = (*Store[SchedulingOrderRules])(nil)
)

// Registry owns the four rule stores of one process. All stores share one
// storage backend but persist independent trees.
type Registry struct {
	DayShift        *DayShift
	NightShift      *NightShift
	FunctionBalance *FunctionBalance
	SchedulingOrder *SchedulingOrder

	logger *zap.Logger
}

func NewRegistry(storage generic.RuleStorage, opts ...Option) *Registry {
	o := buildOptions(opts)
	return &Registry{
		DayShift:        NewDayShift(storage, opts...),
		NightShift:      NewNightShift(storage, opts...),
		FunctionBalance: NewFunctionBalance(storage, opts...),
		SchedulingOrder: NewSchedulingOrder(storage, opts...),
		logger:          o.logger,
	}
}

// InitAll initialises every store and reports where each one's rules came
// from.
func (r *Registry) InitAll(ctx context.Context) map[generic.DomainID]InitOutcome {
	out := make(map[generic.DomainID]InitOutcome, 4)
	for _, d := range r.All() {
		out[d.ID()] = d.Init(ctx)
	}
	r.logger.Info("rule domains initialised",
		zap.String(string(generic.DomainDayShift), string(out[generic.DomainDayShift])),
		zap.String(string(generic.DomainNightShift), string(out[generic.DomainNightShift])),
		zap.String(string(generic.DomainFunctionBalance), string(out[generic.DomainFunctionBalance])),
		zap.String(string(generic.DomainSchedulingOrder), string(out[generic.DomainSchedulingOrder])),
	)
	return out
}

// All returns the stores in generic.Domains() order.
func (r *Registry) All() []Domain {
	return []Domain{
		r.DayShift.Store,
		r.NightShift.Store,
		r.FunctionBalance.Store,
		r.SchedulingOrder.Store,
	}
}

// Domain returns the store of id.
func (r *Registry) Domain(id generic.DomainID) (Domain, error) {
	for _, d := range r.All() {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", generic.ErrUnknownDomain, id)
}

// FlushDirty re-saves every domain whose last write failed and returns the
// domains that are still dirty.
func (r *Registry) FlushDirty(ctx context.Context) []generic.DomainID {
	var pending []generic.DomainID
	for _, d := range r.All() {
		if !d.Dirty() {
			continue
		}
		if !d.Flush(ctx) {
			pending = append(pending, d.ID())
		}
	}
	return pending
}

// Snapshot returns the current tree of every domain, for the solver.
func (r *Registry) Snapshot() map[generic.DomainID]generic.Tree {
	out := make(map[generic.DomainID]generic.Tree, 4)
	for _, d := range r.All() {
		out[d.ID()] = d.Tree()
	}
	return out
}
