/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Calendar routes (target period, windows, holiday tables, month view)
- Rule domain reads, partial updates, reset, export/import, audit
- Function balance membership
- Priority model and solver input
- Staff, personal requests and vacation statistics
- Error status mapping
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/api"
	"github.com/warp/roster-engine/calendar"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/generic/store"
	"github.com/warp/roster-engine/rules"
	"github.com/warp/roster-engine/store/sqlite"
	"github.com/warp/roster-engine/vacation"
)

type testEnv struct {
	handler *api.Handler
	router  http.Handler
	storage *store.Memory
	roster  *vacation.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	storage := store.NewMemory()
	reg := rules.NewRegistry(storage, rules.WithAuditLog(storage))
	reg.InitAll(context.Background())

	roster := vacation.NewMemoryStore()
	fullRest := vacation.StaticFullRest{SpecialHolidays: vacation.SpecialHolidayDays{SpringFestival: 9, NationalDay: 7}}
	h := api.NewHandler(reg, calendar.NewResolver(calendar.BuiltinLunarTable), roster, fullRest, nil)
	h.Audit = storage
	h.Now = func() time.Time { return time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC) }

	return &testEnv{handler: h, router: api.NewRouter(h, nil), storage: storage, roster: roster}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestTargetPeriod(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		query     string
		wantMonth int
		wantYear  int
		wantStart string
		wantEnd   string
	}{
		{"", 2, 2026, "2026-01-26", "2026-02-25"},
		{"?today=2026-01-25", 2, 2026, "2026-01-26", "2026-02-25"},
		{"?today=2026-01-26", 3, 2026, "2026-02-26", "2026-03-25"},
		{"?today=2026-11-30", 1, 2027, "2026-12-26", "2027-01-25"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/calendar/target-period"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			p := decode[api.PeriodDTO](t, rec)
			assert.Equal(t, tt.wantYear, p.Year)
			assert.Equal(t, tt.wantMonth, p.Month)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
		})
	}
}

func TestTargetPeriod_InvalidDate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/calendar/target-period?today=2026-02-30", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[api.ErrorResponse](t, rec).Details, "invalid date")
}

func TestSchedulePeriod(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/calendar/periods/2026/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[api.PeriodDTO](t, rec)
	assert.Equal(t, "202601", p.YearMonth)
	assert.Equal(t, "2025-12-26", p.Start)
	assert.Equal(t, "2026-01-25", p.End)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/calendar/periods/2026/13", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/calendar/periods/year/1", nil).Code)
}

func TestHolidays(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/calendar/holidays/2026", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.HolidaysResponse](t, rec)
	assert.Equal(t, 2026, resp.Year)
	assert.Equal(t, calendar.NameSpringFestival, resp.Holidays["2026-02-17"])
	assert.Equal(t, calendar.NameSpringFestival, resp.Holidays["2026-02-19"])
	assert.Equal(t, calendar.NameNationalDay, resp.Holidays["2026-10-07"])
	assert.NotContains(t, resp.Holidays, "2026-02-20")
}

func TestDay(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/calendar/days/2026-10-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	day := decode[api.DayDTO](t, rec)
	assert.True(t, day.IsHoliday)
	assert.True(t, day.FixedHoliday)
	assert.Equal(t, "Thursday", day.Weekday)
	require.NotNil(t, day.SpecialHoliday)
	assert.Equal(t, 7, day.SpecialHoliday.Days)
	assert.Equal(t, vacation.HolidayMajor, day.SpecialHoliday.Type)

	plain := decode[api.DayDTO](t, env.do(t, http.MethodGet, "/api/calendar/days/2026-03-10", nil))
	assert.False(t, plain.IsHoliday)
	assert.Nil(t, plain.SpecialHoliday)
}

func TestMonth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/calendar/months/2026/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	m := decode[api.MonthResponse](t, rec)
	assert.Len(t, m.Days, 28)
	assert.Equal(t, 8, m.WeekendDays)
	assert.Equal(t, 20, m.WorkDays)
	assert.Equal(t, calendar.NameSpringFestival, m.Days[16].Holiday)
	assert.True(t, m.Days[16].FixedHoliday)
	assert.Empty(t, m.Days[19].Holiday)
}

// =============================================================================
// RULES
// =============================================================================

func TestRules_GetAndUnknownDomain(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/rules/night_shift", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.RulesDTO](t, rec)
	assert.Equal(t, generic.DomainNightShift, resp.Domain)
	assert.False(t, resp.Dirty)
	assert.Equal(t, float64(4), resp.Rules["bigNightAssignment"].(map[string]any)["maleDays"])

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/rules/holiday_shift", nil).Code)

	all := decode[[]api.RulesDTO](t, env.do(t, http.MethodGet, "/api/rules", nil))
	assert.Len(t, all, 4)
}

func TestRules_PatchMergesAndAudits(t *testing.T) {
	// GIVEN: Default rules
	env := newTestEnv(t)

	// WHEN: Patching one nested leaf
	rec := env.do(t, http.MethodPatch, "/api/rules/day_shift", map[string]any{
		"cspSolver": map[string]any{"backtrackLimit": 5},
	})

	// THEN: Only that leaf changes, the write is persisted and audited
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.UpdateResponse](t, rec)
	assert.True(t, resp.Applied)
	assert.True(t, resp.Persisted)
	solver := resp.Rules["cspSolver"].(map[string]any)
	assert.Equal(t, float64(5), solver["backtrackLimit"])
	assert.Equal(t, float64(10000), solver["maxIterations"])
	assert.Equal(t, 5, env.handler.Rules.DayShift.Rules().CSPSolver.BacktrackLimit)

	audit := decode[[]api.AuditEntryDTO](t, env.do(t, http.MethodGet, "/api/rules/audit?domain=day_shift", nil))
	require.Len(t, audit, 1)
	assert.Equal(t, "update", audit[0].Action)
}

func TestRules_PatchRejected(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		domain string
		body   any
	}{
		{"order not a permutation", "scheduling_order", map[string]any{"schedulingOrder": []any{"nightShift"}}},
		{"negative days", "night_shift", map[string]any{"bigNightAssignment": map[string]any{"maleDays": -1}}},
		{"not an object", "day_shift", "[1,2]"},
		{"wrong leaf type", "day_shift", map[string]any{"cspSolver": map[string]any{"enabled": "yes"}}},
		{"object replaced by string", "function_balance", map[string]any{"maxDeviation": "small"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPatch, "/api/rules/"+tt.domain, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	// Rejected writes leave the rules untouched.
	assert.Len(t, env.handler.Rules.SchedulingOrder.SchedulingOrder(), 4)
	assert.Equal(t, 4, env.handler.Rules.NightShift.Rules().Assignment.MaleDays)
}

func TestRules_PatchUnpersisted(t *testing.T) {
	// GIVEN: Storage that rejects writes
	env := newTestEnv(t)
	env.storage.FailSaves(errors.New("disk full"))

	// WHEN: Updating a domain
	rec := env.do(t, http.MethodPatch, "/api/rules/function_balance", map[string]any{"priority": 7})

	// THEN: The change applies in memory and the domain shows up as dirty
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.UpdateResponse](t, rec)
	assert.True(t, resp.Applied)
	assert.False(t, resp.Persisted)

	status := decode[api.FlushStatusDTO](t, env.do(t, http.MethodGet, "/api/admin/flush", nil))
	assert.Equal(t, []generic.DomainID{generic.DomainFunctionBalance}, status.Dirty)

	// WHEN: Storage recovers and a flush is triggered
	env.storage.FailSaves(nil)
	run := decode[api.FlushRun](t, env.do(t, http.MethodPost, "/api/admin/flush", nil))

	// THEN: Nothing is pending
	assert.Empty(t, run.Pending)
	assert.False(t, env.handler.Rules.FunctionBalance.Dirty())
}

func TestRules_ResetExportImport(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/api/rules/night_shift",
		map[string]any{"lastMonthCompensation": map[string]any{"threshold": 5}}).Code)

	// Export carries the current rules.
	rec := env.do(t, http.MethodGet, "/api/rules/night_shift/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.String()
	assert.Contains(t, exported, `"threshold": 5`)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "night_shift.json")

	// Reset restores defaults.
	reset := decode[api.UpdateResponse](t, env.do(t, http.MethodPost, "/api/rules/night_shift/reset", nil))
	assert.True(t, reset.Persisted)
	assert.Equal(t, 2, env.handler.Rules.NightShift.Rules().Compensation.Threshold)

	// Import brings the export back.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/rules/night_shift/import", exported).Code)
	assert.Equal(t, 5, env.handler.Rules.NightShift.Rules().Compensation.Threshold)

	// Garbage is refused without touching the rules.
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/rules/night_shift/import", "{not json").Code)
	assert.Equal(t, 5, env.handler.Rules.NightShift.Rules().Compensation.Threshold)
}

func TestAudit_InvalidQuery(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/rules/audit?domain=nope", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/rules/audit?limit=-1", nil).Code)
}

// =============================================================================
// FUNCTION BALANCE
// =============================================================================

func TestFunctionBalance(t *testing.T) {
	env := newTestEnv(t)

	a1 := decode[api.FunctionDTO](t, env.do(t, http.MethodGet, "/api/rules/function_balance/functions/A1", nil))
	assert.True(t, a1.Balanced)
	assert.Equal(t, rules.CategoryOnline, a1.Category)

	g := decode[api.FunctionDTO](t, env.do(t, http.MethodGet, "/api/rules/function_balance/functions/G", nil))
	assert.False(t, g.Balanced)
	assert.Equal(t, rules.CategoryBusinessSupport, g.Category)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/rules/function_balance/functions/Z", nil).Code)

	// Add G twice: the set holds it once.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/rules/function_balance/functions/G", nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/rules/function_balance/functions/G", nil).Code)
	assert.Equal(t, []string{"A1", "A", "B", "G"}, env.handler.Rules.FunctionBalance.Rules().BalancedFunctions)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/rules/function_balance/functions/A", nil).Code)
	assert.Equal(t, []string{"A1", "B", "G"}, env.handler.Rules.FunctionBalance.Rules().BalancedFunctions)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/rules/function_balance/functions/Z", nil).Code)

	// The domain routes still serve function_balance itself.
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/rules/function_balance", nil).Code)
}

// =============================================================================
// PRIORITY / SOLVER
// =============================================================================

func TestPriority(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/priority", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Strategy      string `json:"strategy"`
		AllowOverride bool   `json:"allowOverride"`
		Plan          []struct {
			Rule   string `json:"rule"`
			Rank   int    `json:"rank"`
			Weight string `json:"weight"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PRIORITY", resp.Strategy)
	assert.False(t, resp.AllowOverride)
	require.Len(t, resp.Plan, 4)
	assert.Equal(t, "nightShift", resp.Plan[0].Rule)
	assert.Equal(t, 1, resp.Plan[0].Rank)
	assert.Equal(t, "100", resp.Plan[0].Weight)
	assert.Equal(t, "functionBalance", resp.Plan[3].Rule)
}

func TestResolveConflict(t *testing.T) {
	env := newTestEnv(t)
	body := api.ResolveRequest{Candidates: []api.CandidateRequest{
		{Rule: rules.RuleDayShift, Value: "D"},
		{Rule: rules.RuleNightShift, Value: "N"},
		{Rule: rules.RuleFunctionBalance, Value: "D"},
	}}

	// PRIORITY: the earliest rule in the order wins.
	var d struct {
		Value   string `json:"value"`
		Rule    string `json:"rule"`
		Decided bool   `json:"decided"`
	}
	rec := env.do(t, http.MethodPost, "/api/priority/resolve", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.True(t, d.Decided)
	assert.Equal(t, "N", d.Value)
	assert.Equal(t, "nightShift", d.Rule)

	// BALANCE: with dayShift at 70, "D" collects 110 against 100 for "N".
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/api/rules/scheduling_order", map[string]any{
		"conflictResolution": map[string]any{"strategy": "BALANCE"},
		"ruleWeights":        map[string]any{"dayShift": "70"},
	}).Code)
	rec = env.do(t, http.MethodPost, "/api/priority/resolve", body)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "D", d.Value)
}

func TestSolverInput(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/solver/input?year=2026&month=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Period   api.PeriodDTO             `json:"period"`
		Holidays map[string]string         `json:"holidays"`
		Rules    map[string]map[string]any `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-01-26", resp.Period.Start)
	assert.Equal(t, calendar.NameSpringFestival, resp.Holidays["2026-02-18"])
	assert.NotContains(t, resp.Holidays, "2026-01-01")
	assert.Len(t, resp.Rules, 4)
	assert.Contains(t, resp.Rules, "scheduling_order")

	// Without a period the target period of Now is used.
	def := decode[struct {
		Period api.PeriodDTO `json:"period"`
	}](t, env.do(t, http.MethodGet, "/api/solver/input", nil))
	assert.Equal(t, 2, def.Period.Month)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/solver/input?year=2026&month=0", nil).Code)
}

// =============================================================================
// STAFF / VACATION
// =============================================================================

func TestStaffAndVacationStats(t *testing.T) {
	// GIVEN: Two staff members, one referenced by work number
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/staff", api.CreateStaffRequest{StaffID: "N1001", Name: "Chen Jing", Sex: "female"})
	require.Equal(t, http.StatusCreated, rec.Code)
	chen := decode[vacation.Staff](t, rec)
	require.NotEmpty(t, chen.ID)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/staff", api.CreateStaffRequest{ID: "s-2", Name: "Li Wei"}).Code)

	// WHEN: Recording requests in January and one in February
	for _, r := range []struct{ date, typ string }{
		{"2026-01-05", "ANNUAL"},
		{"2026-01-06", "ANNUAL"},
		{"2026-01-12", "LEGAL"},
		{"2026-01-13", "SICK"},
		{"2026-01-14", "COMPENSATORY"},
		{"2026-02-02", "ANNUAL"},
	} {
		rec := env.do(t, http.MethodPut, "/api/staff/N1001/requests/"+r.date, api.SetRequestRequest{Type: r.typ})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	// THEN: January counts only January's ANNUAL and LEGAL days
	rec = env.do(t, http.MethodGet, "/api/vacation/stats?month=202601&total_rest_days=8", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[api.VacationStatsResponse](t, rec)
	assert.Equal(t, "2026-01", stats.Month)
	assert.Equal(t, 5, stats.Remaining[chen.ID])
	assert.Equal(t, 8, stats.Remaining["s-2"])
	assert.Equal(t, vacation.Distribution{Annual: 2, Legal: 1, Total: 3}, stats.Stats.Totals)
	assert.Equal(t, 2, stats.Accounts[chen.ID].UsedAnnualInMonth)

	// A quota smaller than the requests floors at zero; the default quota
	// is the minimum legal rest days.
	small := decode[api.VacationStatsResponse](t, env.do(t, http.MethodGet, "/api/vacation/stats?month=2026-01&total_rest_days=2", nil))
	assert.Equal(t, 0, small.Remaining[chen.ID])
	def := decode[api.VacationStatsResponse](t, env.do(t, http.MethodGet, "/api/vacation/stats?month=202601", nil))
	assert.Equal(t, 8, def.TotalRestDays)

	// Deleting a request frees its day.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/staff/"+chen.ID+"/requests/2026-01-12", nil).Code)
	after := decode[api.VacationStatsResponse](t, env.do(t, http.MethodGet, "/api/vacation/stats?month=202601&total_rest_days=8", nil))
	assert.Equal(t, 6, after.Remaining[chen.ID])

	staff := decode[[]vacation.Staff](t, env.do(t, http.MethodGet, "/api/staff", nil))
	assert.Len(t, staff, 2)
}

func TestStaff_Errors(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/staff", api.CreateStaffRequest{ID: "s-1", Name: "Li Wei"}).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing name", http.MethodPost, "/api/staff", api.CreateStaffRequest{ID: "x"}, http.StatusBadRequest},
		{"bad sex", http.MethodPost, "/api/staff", api.CreateStaffRequest{Name: "X", Sex: "other"}, http.StatusBadRequest},
		{"unknown staff", http.MethodPut, "/api/staff/ghost/requests/2026-01-05", api.SetRequestRequest{Type: "ANNUAL"}, http.StatusNotFound},
		{"malformed type", http.MethodPut, "/api/staff/s-1/requests/2026-01-05", api.SetRequestRequest{Type: "annual leave"}, http.StatusBadRequest},
		{"bad date", http.MethodPut, "/api/staff/s-1/requests/2026-13-05", api.SetRequestRequest{Type: "ANNUAL"}, http.StatusBadRequest},
		{"delete unknown staff", http.MethodDelete, "/api/staff/ghost/requests/2026-01-05", nil, http.StatusNotFound},
		{"bad month", http.MethodGet, "/api/vacation/stats?month=2026", nil, http.StatusBadRequest},
		{"bad quota", http.MethodGet, "/api/vacation/stats?month=202601&total_rest_days=x", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestSpecialHoliday(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		date     string
		wantDays int
		wantType vacation.HolidayClass
	}{
		{"2026-02-17", 9, vacation.HolidayMajor},
		{"2026-10-03", 7, vacation.HolidayMajor},
		{"2026-05-01", vacation.MinorHolidayDays, vacation.HolidayMinor},
		{"2026-03-03", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/vacation/special-holiday?date="+tt.date, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			resp := decode[api.SpecialHolidayResponse](t, rec)
			if tt.wantDays == 0 {
				assert.Nil(t, resp.SpecialHoliday)
				return
			}
			require.NotNil(t, resp.SpecialHoliday)
			assert.Equal(t, tt.wantDays, resp.SpecialHoliday.Days)
			assert.Equal(t, tt.wantType, resp.SpecialHoliday.Type)
		})
	}

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/vacation/special-holiday?date=tomorrow", nil).Code)
}

// =============================================================================
// MISC
// =============================================================================

func TestAdminHolidays_WithoutStore(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/holidays", nil)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ok"))
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/rules", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminHolidays_SQLite(t *testing.T) {
	// GIVEN: A sqlite-backed server whose holiday table feeds the resolver
	ctx := context.Background()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := rules.NewRegistry(db, rules.WithAuditLog(db))
	reg.InitAll(ctx)
	resolver := calendar.NewResolver(calendar.MergedLunarSource{calendar.BuiltinLunarTable, db})
	h := api.NewHandler(reg, resolver, db, nil, nil)
	h.Holidays = db
	h.Storage = db
	env := &testEnv{handler: h, router: api.NewRouter(h, nil)}

	// WHEN: An admin adds a holiday beyond the built-in horizon
	rec := env.do(t, http.MethodPut, "/api/admin/holidays/2031-01-23", api.SaveHolidayRequest{Name: calendar.NameSpringFestival})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The resolver expands it like a built-in entry
	holidays := decode[api.HolidaysResponse](t, env.do(t, http.MethodGet, "/api/calendar/holidays/2031", nil))
	assert.Equal(t, calendar.NameSpringFestival, holidays.Holidays["2031-01-25"])

	list := decode[[]map[string]any](t, env.do(t, http.MethodGet, "/api/admin/holidays", nil))
	require.Len(t, list, 1)
	assert.Equal(t, "2031-01-23", list[0]["date"])

	// WHEN: It is deleted
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/admin/holidays/2031-01-23", nil).Code)

	// THEN: The year falls back to the fixed holidays
	holidays = decode[api.HolidaysResponse](t, env.do(t, http.MethodGet, "/api/calendar/holidays/2031", nil))
	assert.NotContains(t, holidays.Holidays, "2031-01-25")

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/admin/holidays/2031-02-30", api.SaveHolidayRequest{Name: "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/admin/holidays/2031-02-03", api.SaveHolidayRequest{}).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil).Code)
}

func TestCreateStaff_ValidationDetails(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/staff", api.CreateStaffRequest{ID: "s-9", Sex: "other"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "CreateStaffRequest.Name: required")
	assert.Contains(t, resp.Details, "CreateStaffRequest.Sex: oneof=male female")
}

func TestListStaff_EmptyRosterIsArrayOnEveryBackend(t *testing.T) {
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	memory := newTestEnv(t)
	h := api.NewHandler(rules.NewRegistry(db), nil, db, nil, nil)
	onSQLite := &testEnv{handler: h, router: api.NewRouter(h, nil)}

	for name, env := range map[string]*testEnv{"memory": memory, "sqlite": onSQLite} {
		t.Run(name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/staff", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "[]\n", rec.Body.String())
		})
	}
}
