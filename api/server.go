/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through zap
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the roster frontend

ROUTE GROUPS:
  /api/calendar/*   Scheduling periods, holiday tables, month views
  /api/rules/*      The four rule domains, export/import, audit
  /api/priority     Validated scheduling priority model
  /api/solver/input Everything the external solver consumes
  /api/staff/*      Roster and personal requests
  /api/vacation/*   Vacation ledger statistics
  /api/admin/*      Admin-maintained lunar holidays
  /api/scenarios/*  Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// DefaultAllowedOrigins is used when no CORS origins are configured.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/calendar", func(r chi.Router) {
			r.Get("/target-period", h.GetTargetPeriod)
			r.Get("/periods/{year}/{month}", h.GetSchedulePeriod)
			r.Get("/holidays/{year}", h.GetHolidays)
			r.Get("/days/{date}", h.GetDay)
			r.Get("/months/{year}/{month}", h.GetMonth)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Get("/audit", h.ListAudit)

			r.Get("/function_balance/functions/{id}", h.GetFunction)
			r.Put("/function_balance/functions/{id}", h.AddBalancedFunction)
			r.Delete("/function_balance/functions/{id}", h.RemoveBalancedFunction)

			r.Get("/{domain}", h.GetRules)
			r.Patch("/{domain}", h.UpdateRules)
			r.Post("/{domain}/reset", h.ResetRules)
			r.Get("/{domain}/export", h.ExportRules)
			r.Post("/{domain}/import", h.ImportRules)
		})

		r.Get("/priority", h.GetPriority)
		r.Post("/priority/resolve", h.ResolveConflict)
		r.Get("/solver/input", h.GetSolverInput)

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", h.ListStaff)
			r.Post("/", h.CreateStaff)
			r.Put("/{id}/requests/{date}", h.SetRequest)
			r.Delete("/{id}/requests/{date}", h.DeleteRequest)
		})

		r.Route("/vacation", func(r chi.Router) {
			r.Get("/stats", h.GetVacationStats)
			r.Get("/special-holiday", h.GetSpecialHoliday)
		})

		r.Route("/admin/holidays", func(r chi.Router) {
			r.Get("/", h.ListAdminHolidays)
			r.Put("/{date}", h.SaveAdminHoliday)
			r.Delete("/{date}", h.DeleteAdminHoliday)
		})
		r.Get("/admin/flush", h.GetFlushStatus)
		r.Post("/admin/flush", h.TriggerFlush)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// requestLogger is middleware.Logger writing through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
