/*
handlers.go - HTTP request handlers

PURPOSE:
  Implements HTTP handlers for the roster policy API. Handlers are thin:
  they parse requests, call the calendar resolver, rule registry, priority
  model or vacation ledger, and format responses.

HANDLER GROUPS:
  Calendar:  GetTargetPeriod, GetSchedulePeriod, GetHolidays, GetDay, GetMonth
  Rules:     ListRules, GetRules, UpdateRules, ResetRules, ExportRules,
             ImportRules, ListAudit
  Functions: GetFunction, AddBalancedFunction, RemoveBalancedFunction
  Priority:  GetPriority, ResolveConflict, GetSolverInput
  Staff:     ListStaff, CreateStaff, SetRequest, DeleteRequest
  Vacation:  GetVacationStats, GetSpecialHoliday
  Admin:     ListAdminHolidays, SaveAdminHoliday, DeleteAdminHoliday,
             GetFlushStatus, TriggerFlush (scheduler.go)
  Scenarios: ListScenarios, GetCurrentScenario, LoadScenario (scenarios.go)

ERROR HANDLING:
  - 400 Bad Request: Invalid input, rule trees that break an invariant
  - 404 Not Found: Unknown domain, function or staff member
  - 501 Not Implemented: Admin holidays without a holiday store
  - 500 Internal Server Error: Storage failures

  A rule write whose storage failed is NOT an error: the change is applied
  in memory and the response carries persisted=false.

SEE ALSO:
  - server.go: Route definitions
  - dto.go: Request/response types
  - scenarios.go: Demo scenario loading
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/roster-engine/calendar"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/priority"
	"github.com/warp/roster-engine/rules"
	"github.com/warp/roster-engine/store/sqlite"
	"github.com/warp/roster-engine/vacation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// HolidayAdmin maintains the movable holidays layered over the built-in
// lunar table.
type HolidayAdmin interface {
	SaveHoliday(ctx context.Context, date, name string) (sqlite.Holiday, error)
	DeleteHoliday(ctx context.Context, date string) error
	ListHolidays(ctx context.Context) ([]sqlite.Holiday, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Rules    *rules.Registry
	Calendar *calendar.Resolver
	Roster   vacation.RequestStore
	FullRest vacation.FullRestSource

	// Optional.
	Audit    generic.AuditLog
	Holidays HolidayAdmin
	Storage  Pinger
	Flusher  *FlushScheduler

	// Now is the clock for target-period lookups without ?today.
	Now func() time.Time

	logger *zap.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. A nil logger discards logs.
func NewHandler(reg *rules.Registry, resolver *calendar.Resolver, roster vacation.RequestStore, fullRest vacation.FullRestSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = calendar.NewResolver(nil)
	}
	return &Handler{
		Rules:    reg,
		Calendar: resolver,
		Roster:   roster,
		FullRest: fullRest,
		Now:      time.Now,
		logger:   logger,
	}
}

// Health pings storage when one is configured.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.Storage != nil {
		if err := h.Storage.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Storage unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetTargetPeriod returns the cycle to plan today.
// GET /api/calendar/target-period?today=YYYY-MM-DD
func (h *Handler) GetTargetPeriod(w http.ResponseWriter, r *http.Request) {
	today := h.Now()
	if s := r.URL.Query().Get("today"); s != "" {
		t, err := generic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid today (use YYYY-MM-DD)", err)
			return
		}
		today = t
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(calendar.TargetPeriod(today)))
}

// GetSchedulePeriod returns the window of the cycle ending in year/month.
// GET /api/calendar/periods/{year}/{month}
func (h *Handler) GetSchedulePeriod(w http.ResponseWriter, r *http.Request) {
	p, ok := parsePeriodParams(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p))
}

// GetHolidays returns the holiday table of a year.
// GET /api/calendar/holidays/{year}
func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	writeJSON(w, http.StatusOK, HolidaysResponse{Year: year, Holidays: h.Calendar.Holidays(year)})
}

// GetDay describes one date.
// GET /api/calendar/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	t, err := generic.ParseDate(date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	name, isHoliday := h.Calendar.HolidayName(date)
	ledger := vacation.NewLedger(nil, h.Calendar, h.FullRest)
	writeJSON(w, http.StatusOK, DayDTO{
		Day: calendar.Day{
			Date:         date,
			Weekday:      t.Weekday().String(),
			Weekend:      generic.IsWeekend(t),
			Holiday:      name,
			FixedHoliday: h.Calendar.IsFixedHoliday(date),
		},
		IsHoliday:      isHoliday,
		SpecialHoliday: ledger.IdentifySpecialHoliday(date),
	})
}

// GetMonth lists every day of a calendar month.
// GET /api/calendar/months/{year}/{month}
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	p, ok := parsePeriodParams(w, r)
	if !ok {
		return
	}
	month := time.Month(p.Month)
	writeJSON(w, http.StatusOK, MonthResponse{
		Year:        p.Year,
		Month:       p.Month,
		WorkDays:    vacation.WorkDaysInMonth(p.Year, month),
		WeekendDays: vacation.WeekendDaysInMonth(p.Year, month),
		Days:        h.Calendar.Month(p.Year, month),
	})
}

func parsePeriodParams(w http.ResponseWriter, r *http.Request) (calendar.Period, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return calendar.Period{}, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return calendar.Period{}, false
	}
	p := calendar.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return calendar.Period{}, false
	}
	return p, true
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

// ListRules returns the current rules of every domain.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	all := h.Rules.All()
	dtos := make([]RulesDTO, 0, len(all))
	for _, d := range all {
		dtos = append(dtos, RulesDTO{Domain: d.ID(), Rules: d.Tree(), Dirty: d.Dirty()})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRules returns the current rules of one domain.
// GET /api/rules/{domain}
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	d, ok := h.domain(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, RulesDTO{Domain: d.ID(), Rules: d.Tree(), Dirty: d.Dirty()})
}

// UpdateRules deep-merges a partial tree into a domain.
// PATCH /api/rules/{domain}
func (h *Handler) UpdateRules(w http.ResponseWriter, r *http.Request) {
	d, ok := h.domain(w, r)
	if !ok {
		return
	}
	var partial generic.Tree
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	result, err := d.UpdateRules(r.Context(), partial)
	if err != nil {
		writeError(w, statusFor(err), "Rules rejected", err)
		return
	}
	writeJSON(w, http.StatusOK, UpdateResponse{UpdateResult: result, Domain: d.ID(), Rules: d.Tree()})
}

// ResetRules restores a domain's defaults.
// POST /api/rules/{domain}/reset
func (h *Handler) ResetRules(w http.ResponseWriter, r *http.Request) {
	d, ok := h.domain(w, r)
	if !ok {
		return
	}
	result := d.ResetToDefault(r.Context())
	writeJSON(w, http.StatusOK, UpdateResponse{UpdateResult: result, Domain: d.ID(), Rules: d.Tree()})
}

// ExportRules returns a domain's rules as a pretty JSON document.
// GET /api/rules/{domain}/export
func (h *Handler) ExportRules(w http.ResponseWriter, r *http.Request) {
	d, ok := h.domain(w, r)
	if !ok {
		return
	}
	doc, err := d.ExportRules()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export rules", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(d.ID())+`.json"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, doc)
}

// ImportRules replaces a domain's rules with an exported document merged
// onto the defaults.
// POST /api/rules/{domain}/import
func (h *Handler) ImportRules(w http.ResponseWriter, r *http.Request) {
	d, ok := h.domain(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}
	if !d.ImportRules(r.Context(), string(body)) {
		writeError(w, http.StatusBadRequest, "Invalid rules document", nil)
		return
	}
	writeJSON(w, http.StatusOK, RulesDTO{Domain: d.ID(), Rules: d.Tree(), Dirty: d.Dirty()})
}

// ListAudit returns recent rule changes, newest first.
// GET /api/rules/audit?domain=day_shift&limit=50
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		writeJSON(w, http.StatusOK, []AuditEntryDTO{})
		return
	}
	var domain generic.DomainID
	if s := r.URL.Query().Get("domain"); s != "" {
		d, err := generic.ParseDomain(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Unknown domain", err)
			return
		}
		domain = d
	}
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	entries, err := h.Audit.QueryAudit(r.Context(), domain, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query audit log", err)
		return
	}
	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toAuditEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) domain(w http.ResponseWriter, r *http.Request) (rules.Domain, bool) {
	id, err := generic.ParseDomain(chi.URLParam(r, "domain"))
	if err == nil {
		var d rules.Domain
		if d, err = h.Rules.Domain(id); err == nil {
			return d, true
		}
	}
	writeError(w, http.StatusNotFound, "Unknown rule domain", err)
	return nil, false
}

// =============================================================================
// FUNCTION BALANCE HANDLERS
// =============================================================================

// GetFunction returns a function's taxonomy entry and balanced flag.
// GET /api/rules/function_balance/functions/{id}
func (h *Handler) GetFunction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, category, ok := h.Rules.FunctionBalance.FunctionConfig(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown function", nil)
		return
	}
	writeJSON(w, http.StatusOK, FunctionDTO{
		ID:       id,
		Category: category,
		Balanced: h.Rules.FunctionBalance.IsFunctionBalanced(id),
		Config:   def,
	})
}

// AddBalancedFunction adds a function to the balanced set.
// PUT /api/rules/function_balance/functions/{id}
func (h *Handler) AddBalancedFunction(w http.ResponseWriter, r *http.Request) {
	result, err := h.Rules.FunctionBalance.AddBalancedFunction(r.Context(), chi.URLParam(r, "id"))
	h.writeFunctionUpdate(w, result, err)
}

// RemoveBalancedFunction drops a function from the balanced set.
// DELETE /api/rules/function_balance/functions/{id}
func (h *Handler) RemoveBalancedFunction(w http.ResponseWriter, r *http.Request) {
	result, err := h.Rules.FunctionBalance.RemoveBalancedFunction(r.Context(), chi.URLParam(r, "id"))
	h.writeFunctionUpdate(w, result, err)
}

func (h *Handler) writeFunctionUpdate(w http.ResponseWriter, result generic.UpdateResult, err error) {
	if err != nil {
		writeError(w, statusFor(err), "Failed to update balanced functions", err)
		return
	}
	writeJSON(w, http.StatusOK, UpdateResponse{
		UpdateResult: result,
		Domain:       generic.DomainFunctionBalance,
		Rules:        h.Rules.FunctionBalance.Tree(),
	})
}

// =============================================================================
// PRIORITY / SOLVER HANDLERS
// =============================================================================

// GetPriority returns the validated scheduling priority model.
// GET /api/priority
func (h *Handler) GetPriority(w http.ResponseWriter, r *http.Request) {
	model, ok := h.priorityModel(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPriorityDTO(model))
}

// ResolveConflict settles competing rule-group proposals for one slot.
// POST /api/priority/resolve
func (h *Handler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	model, ok := h.priorityModel(w)
	if !ok {
		return
	}
	candidates := make([]priority.Candidate, len(req.Candidates))
	for i, c := range req.Candidates {
		candidates[i] = priority.Candidate{Rule: c.Rule, Value: c.Value}
	}
	writeJSON(w, http.StatusOK, model.Resolve(candidates))
}

// GetSolverInput bundles the target cycle, its holidays, the priority plan
// and all four rule trees.
// GET /api/solver/input?year=2026&month=2
func (h *Handler) GetSolverInput(w http.ResponseWriter, r *http.Request) {
	period := calendar.TargetPeriod(h.Now())
	if r.URL.Query().Get("year") != "" || r.URL.Query().Get("month") != "" {
		year, errY := strconv.Atoi(r.URL.Query().Get("year"))
		month, errM := strconv.Atoi(r.URL.Query().Get("month"))
		period = calendar.Period{Year: year, Month: month}
		if err := errors.Join(errY, errM, period.Validate()); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period", err)
			return
		}
	}

	model, ok := h.priorityModel(w)
	if !ok {
		return
	}

	holidays := make(map[string]string)
	for _, d := range period.Window().Days() {
		date := generic.FormatDate(d)
		if name, ok := h.Calendar.HolidayName(date); ok {
			holidays[date] = name
		}
	}

	writeJSON(w, http.StatusOK, SolverInputDTO{
		Period:   toPeriodDTO(period),
		Holidays: holidays,
		Priority: toPriorityDTO(model),
		Rules:    h.Rules.Snapshot(),
	})
}

func (h *Handler) priorityModel(w http.ResponseWriter) (*priority.Model, bool) {
	model, err := priority.FromRules(h.Rules.SchedulingOrder.Rules())
	if err != nil {
		h.logger.Error("scheduling order rules are invalid", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Invalid priority model", err)
		return nil, false
	}
	return model, true
}

func toPriorityDTO(m *priority.Model) PriorityDTO {
	return PriorityDTO{Strategy: m.Strategy(), AllowOverride: m.AllowOverride(), Plan: m.Plan()}
}

// =============================================================================
// STAFF HANDLERS
// =============================================================================

// ListStaff returns the roster.
// GET /api/staff
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Roster.ListStaff(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list staff", err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

// CreateStaff adds or replaces a roster member.
// POST /api/staff
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if !decodeBody(w, r, &req) {
		return
	}

	saved, err := h.Roster.SaveStaff(r.Context(), vacation.Staff{
		ID:      req.ID,
		StaffID: req.StaffID,
		Name:    req.Name,
		Sex:     req.Sex,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save staff", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// SetRequest records a personal request.
// PUT /api/staff/{id}/requests/{date}
func (h *Handler) SetRequest(w http.ResponseWriter, r *http.Request) {
	var req SetRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	leaveType, err := vacation.ParseLeaveType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave type", err)
		return
	}
	id, date := chi.URLParam(r, "id"), chi.URLParam(r, "date")
	if err := h.Roster.SetRequest(r.Context(), id, date, leaveType); err != nil {
		writeError(w, statusFor(err), "Failed to save request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"staff": id, "date": date, "type": string(leaveType)})
}

// DeleteRequest removes a personal request.
// DELETE /api/staff/{id}/requests/{date}
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.Roster.DeleteRequest(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "date")); err != nil {
		writeError(w, statusFor(err), "Failed to delete request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// VACATION HANDLERS
// =============================================================================

// GetVacationStats returns the ledger view of a month. total_rest_days
// defaults to the scheduling order's minimum legal rest days.
// GET /api/vacation/stats?month=202601&total_rest_days=8
func (h *Handler) GetVacationStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	month, err := vacation.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYYMM or YYYY-MM)", err)
		return
	}
	totalRest := h.Rules.SchedulingOrder.Rules().BasicRestRules.MinLegalRestDays
	if s := r.URL.Query().Get("total_rest_days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid total_rest_days", err)
			return
		}
		totalRest = n
	}

	staff, err := h.Roster.ListStaff(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list staff", err)
		return
	}
	book, err := h.Roster.LoadBook(ctx, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load requests", err)
		return
	}

	ledger := vacation.NewLedger(book, h.Calendar, h.FullRest)
	accounts := make(map[string]vacation.Account, len(staff))
	for _, s := range staff {
		if s.Key() != "" {
			accounts[s.Key()] = ledger.Account(s.Key(), month, totalRest)
		}
	}

	writeJSON(w, http.StatusOK, VacationStatsResponse{
		Month:         month.Prefix(),
		TotalRestDays: totalRest,
		WorkDays:      vacation.WorkDaysInMonth(month.Year, month.Month),
		WeekendDays:   vacation.WeekendDaysInMonth(month.Year, month.Month),
		Stats:         ledger.AllVacationStats(staff, month),
		Remaining:     ledger.AllRemainingVacationDays(staff, month, totalRest),
		Accounts:      accounts,
	})
}

// GetSpecialHoliday returns the rest allotment of the holiday on a date.
// GET /api/vacation/special-holiday?date=YYYY-MM-DD
func (h *Handler) GetSpecialHoliday(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !calendar.IsValidDate(date) {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", nil)
		return
	}
	ledger := vacation.NewLedger(nil, h.Calendar, h.FullRest)
	writeJSON(w, http.StatusOK, SpecialHolidayResponse{Date: date, SpecialHoliday: ledger.IdentifySpecialHoliday(date)})
}

// =============================================================================
// ADMIN HOLIDAY HANDLERS
// =============================================================================

// ListAdminHolidays returns the admin-maintained holidays.
// GET /api/admin/holidays
func (h *Handler) ListAdminHolidays(w http.ResponseWriter, r *http.Request) {
	if !h.requireHolidays(w) {
		return
	}
	holidays, err := h.Holidays.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	if holidays == nil {
		holidays = []sqlite.Holiday{}
	}
	writeJSON(w, http.StatusOK, holidays)
}

// SaveAdminHoliday names the holiday on a date.
// PUT /api/admin/holidays/{date}
func (h *Handler) SaveAdminHoliday(w http.ResponseWriter, r *http.Request) {
	if !h.requireHolidays(w) {
		return
	}
	var req SaveHolidayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	holiday, err := h.Holidays.SaveHoliday(r.Context(), chi.URLParam(r, "date"), req.Name)
	if err != nil {
		writeError(w, statusFor(err), "Failed to save holiday", err)
		return
	}
	h.logger.Info("holiday saved", zap.String("date", holiday.Date), zap.String("name", holiday.Name))
	writeJSON(w, http.StatusOK, holiday)
}

// DeleteAdminHoliday removes the holiday on a date.
// DELETE /api/admin/holidays/{date}
func (h *Handler) DeleteAdminHoliday(w http.ResponseWriter, r *http.Request) {
	if !h.requireHolidays(w) {
		return
	}
	if err := h.Holidays.DeleteHoliday(r.Context(), chi.URLParam(r, "date")); err != nil {
		writeError(w, statusFor(err), "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) requireHolidays(w http.ResponseWriter) bool {
	if h.Holidays == nil {
		writeError(w, http.StatusNotImplemented, "Holiday maintenance needs the sqlite storage driver", nil)
		return false
	}
	return true
}

// =============================================================================
// HELPERS
// =============================================================================

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err),
		errors.Is(err, generic.ErrUnknownDomain),
		errors.Is(err, rules.ErrUnknownFunction):
		return http.StatusNotFound
	case generic.IsClientError(err),
		errors.Is(err, rules.ErrInvalidRules),
		errors.Is(err, vacation.ErrInvalidLeaveType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
