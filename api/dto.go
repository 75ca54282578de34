/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain types that are
  already JSON-shaped (rule trees, calendar.Day, vacation results) are
  returned as-is; the types here wrap them or carry request bodies.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/roster-engine/calendar"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/priority"
	"github.com/warp/roster-engine/rules"
	"github.com/warp/roster-engine/vacation"
)

// =============================================================================
// CALENDAR
// =============================================================================

// PeriodDTO is a scheduling cycle with its date window.
type PeriodDTO struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	YearMonth string `json:"yearMonth"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func toPeriodDTO(p calendar.Period) PeriodDTO {
	w := p.Window()
	return PeriodDTO{
		Year:      p.Year,
		Month:     p.Month,
		YearMonth: p.YearMonth(),
		Start:     generic.FormatDate(w.Start),
		End:       generic.FormatDate(w.End),
	}
}

// HolidaysResponse is the holiday table of one year.
type HolidaysResponse struct {
	Year     int               `json:"year"`
	Holidays map[string]string `json:"holidays"`
}

// DayDTO describes a single date.
type DayDTO struct {
	calendar.Day
	IsHoliday      bool                     `json:"is_holiday"`
	SpecialHoliday *vacation.SpecialHoliday `json:"special_holiday,omitempty"`
}

// MonthResponse is the month view with its day counts.
type MonthResponse struct {
	Year        int            `json:"year"`
	Month       int            `json:"month"`
	WorkDays    int            `json:"work_days"`
	WeekendDays int            `json:"weekend_days"`
	Days        []calendar.Day `json:"days"`
}

// =============================================================================
// RULES
// =============================================================================

// RulesDTO is the current tree of one domain.
type RulesDTO struct {
	Domain generic.DomainID `json:"domain"`
	Rules  generic.Tree     `json:"rules"`
	Dirty  bool             `json:"dirty"`
}

// UpdateResponse reports a rule write and the resulting rules.
type UpdateResponse struct {
	generic.UpdateResult
	Domain generic.DomainID `json:"domain"`
	Rules  generic.Tree     `json:"rules"`
}

// FunctionDTO is one function of the taxonomy.
type FunctionDTO struct {
	ID       string                 `json:"id"`
	Category rules.FunctionCategory `json:"category"`
	Balanced bool                   `json:"balanced"`
	Config   rules.FunctionDef      `json:"config"`
}

// AuditEntryDTO is one rule change.
type AuditEntryDTO struct {
	ID        string           `json:"id"`
	Timestamp string           `json:"timestamp"`
	Domain    generic.DomainID `json:"domain"`
	Action    string           `json:"action"`
	Persisted bool             `json:"persisted"`
	Rules     generic.Tree     `json:"rules"`
}

func toAuditEntryDTO(e generic.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:        e.ID,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Domain:    e.Domain,
		Action:    string(e.Action),
		Persisted: e.Persisted,
		Rules:     e.Tree,
	}
}

// =============================================================================
// PRIORITY / SOLVER
// =============================================================================

// PriorityDTO is the validated priority model.
type PriorityDTO struct {
	Strategy      rules.Strategy          `json:"strategy"`
	AllowOverride bool                    `json:"allowOverride"`
	Plan          []priority.WeightedRule `json:"plan"`
}

// CandidateRequest is one rule group's proposal in a conflict.
type CandidateRequest struct {
	Rule  rules.RuleID `json:"rule" validate:"required"`
	Value string       `json:"value"`
}

// ResolveRequest asks the model to settle a conflict.
type ResolveRequest struct {
	Candidates []CandidateRequest `json:"candidates" validate:"dive"`
}

// SolverInputDTO is everything the external solver consumes for a cycle.
type SolverInputDTO struct {
	Period   PeriodDTO                         `json:"period"`
	Holidays map[string]string                 `json:"holidays"`
	Priority PriorityDTO                       `json:"priority"`
	Rules    map[generic.DomainID]generic.Tree `json:"rules"`
}

// =============================================================================
// STAFF / VACATION
// =============================================================================

// CreateStaffRequest adds a roster member.
type CreateStaffRequest struct {
	ID      string `json:"id" validate:"max=64"`
	StaffID string `json:"staffId" validate:"max=64"`
	Name    string `json:"name" validate:"required,max=100"`
	Sex     string `json:"sex" validate:"omitempty,oneof=male female"`
}

// SetRequestRequest records a personal request on a date.
type SetRequestRequest struct {
	Type string `json:"type" validate:"required"`
}

// VacationStatsResponse is the ledger view of a month.
type VacationStatsResponse struct {
	Month         string                      `json:"month"`
	TotalRestDays int                         `json:"total_rest_days"`
	WorkDays      int                         `json:"work_days"`
	WeekendDays   int                         `json:"weekend_days"`
	Stats         vacation.RosterStats        `json:"stats"`
	Remaining     map[string]int              `json:"remaining"`
	Accounts      map[string]vacation.Account `json:"accounts"`
}

// SpecialHolidayResponse is the rest allotment of a date, if any.
type SpecialHolidayResponse struct {
	Date           string                   `json:"date"`
	SpecialHoliday *vacation.SpecialHoliday `json:"special_holiday"`
}

// SaveHolidayRequest names an admin-maintained holiday.
type SaveHolidayRequest struct {
	Name string `json:"name" validate:"required,max=32"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request body for loading a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
