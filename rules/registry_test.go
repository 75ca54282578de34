package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/generic/store"
	"github.com/warp/roster-engine/rules"
)

func TestRegistry_DomainsPersistIndependently(t *testing.T) {
	// GIVEN: One backend shared by all four stores
	ctx := context.Background()
	mem := store.NewMemory()
	reg := rules.NewRegistry(mem)
	reg.InitAll(ctx)

	// WHEN: Only the day-shift domain is updated
	_, err := reg.DayShift.UpdateRules(ctx, generic.Tree{"cspSolver": map[string]any{"enabled": false}})
	require.NoError(t, err)

	// THEN: Only the day-shift tree is stored
	saved, err := mem.LoadRules(ctx, generic.DomainDayShift)
	require.NoError(t, err)
	assert.NotNil(t, saved)
	for _, d := range []generic.DomainID{generic.DomainNightShift, generic.DomainFunctionBalance, generic.DomainSchedulingOrder} {
		other, err := mem.LoadRules(ctx, d)
		require.NoError(t, err)
		assert.Nil(t, other, d)
	}
}

func TestRegistry_InitAllReportsOutcomes(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryWithoutSchema()
	reg := rules.NewRegistry(mem)

	outcomes := reg.InitAll(ctx)

	assert.Len(t, outcomes, 4)
	for _, d := range generic.Domains() {
		assert.Equal(t, rules.InitDefaults, outcomes[d], d)
	}
	assert.Equal(t, 1, mem.Upgrades(), "only the first store needs the upgrade")
}

func TestRegistry_DomainLookup(t *testing.T) {
	reg := rules.NewRegistry(nil)

	d, err := reg.Domain(generic.DomainFunctionBalance)
	require.NoError(t, err)
	assert.Equal(t, generic.DomainFunctionBalance, d.ID())
	assert.Contains(t, d.Tree(), "balancedFunctions")

	_, err = reg.Domain("lunch_breaks")
	assert.ErrorIs(t, err, generic.ErrUnknownDomain)
}

func TestRegistry_FlushDirty(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	reg := rules.NewRegistry(mem)
	reg.InitAll(ctx)

	mem.FailSaves(errDiskFull)
	_, err := reg.NightShift.UpdateRules(ctx, generic.Tree{"reduction": map[string]any{"enabled": false}})
	require.NoError(t, err)

	assert.Equal(t, []generic.DomainID{generic.DomainNightShift}, reg.FlushDirty(ctx))

	mem.FailSaves(nil)
	assert.Empty(t, reg.FlushDirty(ctx))
	assert.False(t, reg.NightShift.Dirty())
}

func TestRegistry_Snapshot(t *testing.T) {
	reg := rules.NewRegistry(nil)

	snap := reg.Snapshot()

	assert.Len(t, snap, 4)
	assert.Contains(t, snap[generic.DomainSchedulingOrder], "schedulingOrder")
}
