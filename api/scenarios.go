/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that put the rule domains and the roster
	into a known state for demos and frontend development. Each scenario
	resets every rule domain to its defaults, replaces the roster, records
	personal requests, and applies its own rule overrides.

AVAILABLE SCENARIOS:

	baseline:       Default rules, a small mixed roster, a few leave days
	short-staffed:  Strict manpower threshold, only A1 balanced, heavy leave
	festival-month: Spring Festival cycle with balance-vote conflict resolution

HOW SCENARIOS WORK:
 1. Reset every rule domain to defaults
 2. Reset the roster (when the roster store supports it)
 3. Create staff
 4. Record personal requests
 5. Apply rule overrides through the normal update path (audited)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "short-staffed"}

NOTE:

	Scenarios drop the roster. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Staff and rule handlers
  - rules/registry.go: The rule domains being reset
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/vacation"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	staff     []vacation.Staff
	requests  []scenarioRequest
	overrides map[generic.DomainID]generic.Tree
}

type scenarioRequest struct {
	staffID string
	date    string
	leave   vacation.LeaveType
}

var baseStaff = []vacation.Staff{
	{ID: "s-001", StaffID: "N1001", Name: "Chen Jing", Sex: "female"},
	{ID: "s-002", StaffID: "N1002", Name: "Li Wei", Sex: "male"},
	{ID: "s-003", StaffID: "N1003", Name: "Wang Fang", Sex: "female"},
	{ID: "s-004", StaffID: "N1004", Name: "Zhao Lei", Sex: "male"},
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "baseline",
			Name:        "Baseline",
			Description: "Default rules with a four-person roster and a few leave days in January 2026",
		},
		staff: baseStaff,
		requests: []scenarioRequest{
			{"s-001", "2026-01-05", vacation.LeaveAnnual},
			{"s-001", "2026-01-06", vacation.LeaveAnnual},
			{"s-001", "2026-01-12", vacation.LeaveLegal},
			{"s-002", "2026-01-19", vacation.LeaveRequest},
			{"s-003", "2026-01-20", vacation.LeaveSick},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "short-staffed",
			Name:        "Short-Staffed",
			Description: "Manpower threshold raised, only A1 balanced, half the roster on leave",
		},
		staff: baseStaff,
		requests: []scenarioRequest{
			{"s-001", "2026-01-05", vacation.LeaveAnnual},
			{"s-001", "2026-01-06", vacation.LeaveAnnual},
			{"s-001", "2026-01-07", vacation.LeaveAnnual},
			{"s-002", "2026-01-05", vacation.LeaveMarriage},
			{"s-002", "2026-01-06", vacation.LeaveMarriage},
			{"s-003", "2026-01-08", vacation.LeaveTraining},
			{"s-003", "2026-01-09", vacation.LeaveLegal},
		},
		overrides: map[generic.DomainID]generic.Tree{
			generic.DomainNightShift: {
				"manpower":         map[string]any{"sufficiencyThreshold": "1.2"},
				"vacationConflict": map[string]any{"waivableTypes": []any{"REQUEST", "TRAINING", "LEGAL"}},
			},
			generic.DomainFunctionBalance: {
				"balancedFunctions": []any{"A1"},
				"strategy":          "strict",
			},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "festival-month",
			Name:        "Festival Month",
			Description: "Spring Festival cycle (February 2026) resolved by weighted vote",
		},
		staff: append(append([]vacation.Staff{}, baseStaff...),
			vacation.Staff{ID: "s-005", StaffID: "N1005", Name: "Sun Mei", Sex: "female"},
		),
		requests: []scenarioRequest{
			{"s-001", "2026-02-16", vacation.LeaveAnnual},
			{"s-001", "2026-02-17", vacation.LeaveLegal},
			{"s-002", "2026-02-18", vacation.LeaveAnnual},
			{"s-004", "2026-02-19", vacation.LeaveAnnual},
			{"s-004", "2026-02-20", vacation.LeaveAnnual},
			{"s-005", "2026-02-23", vacation.LeaveMaternity},
		},
		overrides: map[generic.DomainID]generic.Tree{
			generic.DomainSchedulingOrder: {
				"conflictResolution": map[string]any{"strategy": "BALANCE"},
				"basicRestRules":     map[string]any{"averageHolidayRest": true, "festivalPriorityScoring": true},
			},
		},
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if s, ok := findScenario(current); ok {
		writeJSON(w, http.StatusOK, s.ScenarioDTO)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = ""

	if err := h.loadScenario(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = s.ID
	h.logger.Info("scenario loaded", zap.String("scenario", s.ID))

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

// =============================================================================
// SCENARIO LOADER
// =============================================================================

type rosterResetter interface {
	ResetRoster(ctx context.Context) error
}

func (h *Handler) loadScenario(ctx context.Context, s scenario) error {
	for _, d := range h.Rules.All() {
		d.ResetToDefault(ctx)
	}

	if rs, ok := h.Roster.(rosterResetter); ok {
		if err := rs.ResetRoster(ctx); err != nil {
			return fmt.Errorf("resetting roster: %w", err)
		}
	}

	for _, st := range s.staff {
		if _, err := h.Roster.SaveStaff(ctx, st); err != nil {
			return fmt.Errorf("saving staff %s: %w", st.ID, err)
		}
	}
	for _, req := range s.requests {
		if err := h.Roster.SetRequest(ctx, req.staffID, req.date, req.leave); err != nil {
			return fmt.Errorf("saving request %s/%s: %w", req.staffID, req.date, err)
		}
	}

	for _, id := range generic.Domains() {
		tree, ok := s.overrides[id]
		if !ok {
			continue
		}
		d, err := h.Rules.Domain(id)
		if err != nil {
			return err
		}
		patch, err := generic.Clone(tree)
		if err != nil {
			return err
		}
		if _, err := d.UpdateRules(ctx, patch); err != nil {
			return fmt.Errorf("applying %s overrides: %w", id, err)
		}
	}
	return nil
}
