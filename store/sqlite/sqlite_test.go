package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/calendar"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/rules"
	"github.com/warp/roster-engine/store/sqlite"
	"github.com/warp/roster-engine/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// RULE STORAGE
// =============================================================================

func TestLoadRules_NothingSaved(t *testing.T) {
	store := newTestStore(t)

	tree, err := store.LoadRules(context.Background(), generic.DomainNightShift)

	require.NoError(t, err)
	assert.Nil(t, tree)
}

func TestSaveRules_RoundTripAndVersion(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tree := generic.Tree{
		"balancedFunctions": []any{"A1", "B"},
		"maxDeviation":      map[string]any{"monthly": float64(2)},
	}

	require.NoError(t, store.SaveRules(ctx, generic.DomainFunctionBalance, tree))
	require.NoError(t, store.SaveRules(ctx, generic.DomainFunctionBalance, tree))

	loaded, err := store.LoadRules(ctx, generic.DomainFunctionBalance)
	require.NoError(t, err)
	assert.Equal(t, tree, loaded)

	version, err := store.RuleVersion(ctx, generic.DomainFunctionBalance)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	version, err = store.RuleVersion(ctx, generic.DomainDayShift)
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestLoadRules_UnmigratedDatabaseReportsSchemaMissing(t *testing.T) {
	// GIVEN: A database opened without its schema
	ctx := context.Background()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// WHEN: Rules are loaded
	_, err = store.LoadRules(ctx, generic.DomainDayShift)

	// THEN: The error says the schema is missing
	require.ErrorIs(t, err, generic.ErrSchemaMissing)
	var serr *generic.StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "load", serr.Op)

	// AND: After an upgrade the load succeeds
	require.NoError(t, store.UpgradeSchema(ctx))
	tree, err := store.LoadRules(ctx, generic.DomainDayShift)
	require.NoError(t, err)
	assert.Nil(t, tree)
}

func TestRuleStore_InitUpgradesUnmigratedDatabase(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reg := rules.NewRegistry(store, rules.WithAuditLog(store))
	outcomes := reg.InitAll(ctx)

	assert.Equal(t, rules.InitDefaults, outcomes[generic.DomainDayShift])
	result, err := reg.DayShift.UpdateRules(ctx, generic.Tree{"cspSolver": map[string]any{"maxIterations": float64(9)}})
	require.NoError(t, err)
	assert.True(t, result.Persisted)

	reloaded := rules.NewDayShift(store)
	assert.Equal(t, rules.InitFromStorage, reloaded.Init(ctx))
	assert.Equal(t, 9, reloaded.Rules().CSPSolver.MaxIterations)
}

// =============================================================================
// AUDIT
// =============================================================================

func TestAudit_NewestFirstWithFilterAndLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	entries := []generic.AuditEntry{
		{ID: "a1", Timestamp: base, Domain: generic.DomainDayShift, Action: generic.AuditRulesUpdated, Tree: generic.Tree{"x": float64(1)}, Persisted: true},
		{ID: "a2", Timestamp: base.Add(time.Minute), Domain: generic.DomainNightShift, Action: generic.AuditRulesReset, Tree: generic.Tree{}},
		{ID: "a3", Timestamp: base.Add(2 * time.Minute), Domain: generic.DomainDayShift, Action: generic.AuditRulesImported, Tree: generic.Tree{}},
	}
	for _, e := range entries {
		require.NoError(t, store.AppendAudit(ctx, e))
	}

	all, err := store.QueryAudit(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a3", all[0].ID)

	day, err := store.QueryAudit(ctx, generic.DomainDayShift, 1)
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "a3", day[0].ID)
	assert.Equal(t, generic.AuditRulesImported, day[0].Action)

	day, err = store.QueryAudit(ctx, generic.DomainDayShift, 0)
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, generic.Tree{"x": float64(1)}, day[1].Tree)
	assert.True(t, day[1].Persisted)
	assert.True(t, day[1].Timestamp.Equal(base))
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_ServeAsLunarSource(t *testing.T) {
	// GIVEN: An admin override for 2031, past the built-in horizon
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.SaveHoliday(ctx, "2031-01-23", calendar.NameSpringFestival)
	require.NoError(t, err)

	// WHEN: The resolver layers the store over the built-in table
	resolver := calendar.NewResolver(calendar.MergedLunarSource{calendar.BuiltinLunarTable, store})

	// THEN: The stored 春节 expands like a built-in one
	table := resolver.Holidays(2031)
	assert.Equal(t, calendar.NameSpringFestival, table["2031-01-25"])
	assert.True(t, resolver.IsFixedHoliday("2031-01-24"))
	assert.Equal(t, calendar.NameSpringFestival, resolver.Holidays(2026)["2026-02-18"])
}

func TestHolidays_SaveReplacesAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.SaveHoliday(ctx, "2031-06-24", calendar.NameZhongqiu)
	require.NoError(t, err)
	second, err := store.SaveHoliday(ctx, "2031-06-24", calendar.NameDuanwu)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same date keeps its row")

	list, err := store.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, calendar.NameDuanwu, list[0].Name)

	require.NoError(t, store.DeleteHoliday(ctx, "2031-06-24"))
	assert.Empty(t, store.LunarHolidays())

	_, err = store.SaveHoliday(ctx, "2031-02-30", calendar.NameDuanwu)
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

// =============================================================================
// STAFF & REQUESTS
// =============================================================================

func TestRequests_LoadBookForMonth(t *testing.T) {
	// GIVEN: Two staff members with requests across two months
	ctx := context.Background()
	store := newTestStore(t)
	alice, err := store.SaveStaff(ctx, vacation.Staff{StaffID: "E-1", Name: "Alice", Sex: "female"})
	require.NoError(t, err)
	bob, err := store.SaveStaff(ctx, vacation.Staff{Name: "Bob"})
	require.NoError(t, err)

	require.NoError(t, store.SetRequest(ctx, alice.ID, "2026-01-03", vacation.LeaveAnnual))
	require.NoError(t, store.SetRequest(ctx, "E-1", "2026-01-10", vacation.LeaveLegal))
	require.NoError(t, store.SetRequest(ctx, alice.ID, "2026-01-15", vacation.LeaveAnnual))
	require.NoError(t, store.SetRequest(ctx, bob.ID, "2026-02-01", vacation.LeaveAnnual))

	// WHEN: January is loaded into a ledger
	jan := vacation.MustParseMonth("202601")
	book, err := store.LoadBook(ctx, jan)
	require.NoError(t, err)
	ledger := vacation.NewLedger(book, nil, nil)

	// THEN: Only January's requests count
	assert.Equal(t, vacation.Distribution{Annual: 2, Legal: 1, Total: 3}, ledger.VacationTypeDistribution(alice.ID, jan))
	assert.NotContains(t, book, bob.ID)

	staff, err := store.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "Alice", staff[0].Name)
	assert.Equal(t, "E-1", staff[0].StaffID)
}

func TestListStaff_EmptyRoster(t *testing.T) {
	store := newTestStore(t)

	staff, err := store.ListStaff(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, staff)
	assert.Empty(t, staff)
}

func TestRequests_OverwriteAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	s, err := store.SaveStaff(ctx, vacation.Staff{Name: "Carol"})
	require.NoError(t, err)
	jan := vacation.MustParseMonth("2026-01")

	require.NoError(t, store.SetRequest(ctx, s.ID, "2026-01-05", vacation.LeaveAnnual))
	require.NoError(t, store.SetRequest(ctx, s.ID, "2026-01-05", vacation.LeaveSick))
	book, err := store.LoadBook(ctx, jan)
	require.NoError(t, err)
	assert.Equal(t, vacation.LeaveSick, book[s.ID]["2026-01-05"])

	require.NoError(t, store.DeleteRequest(ctx, s.ID, "2026-01-05"))
	book, err = store.LoadBook(ctx, jan)
	require.NoError(t, err)
	assert.Empty(t, book)
}

func TestRequests_UnknownStaff(t *testing.T) {
	store := newTestStore(t)

	err := store.SetRequest(context.Background(), "ghost", "2026-01-05", vacation.LeaveAnnual)

	assert.ErrorIs(t, err, generic.ErrStaffNotFound)
}

func TestReset_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SaveRules(ctx, generic.DomainDayShift, generic.Tree{"a": true}))
	_, err := store.SaveStaff(ctx, vacation.Staff{Name: "Dan"})
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	tree, err := store.LoadRules(ctx, generic.DomainDayShift)
	require.NoError(t, err)
	assert.Nil(t, tree)
	staff, err := store.ListStaff(ctx)
	require.NoError(t, err)
	assert.Empty(t, staff)
}
