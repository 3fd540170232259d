/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLogger: Structured request logging via logrus
  4. CORS:       Cross-origin requests for frontend
  5. RequireAPIKey (optional): API-key authentication

ROUTE GROUPS:
  /api/health               Liveness probe (never authenticated)
  /api/resources/*          Resources with derived state
  /api/projects/*           Project catalog
  /api/allocations/*        Allocation grid
  /api/leaves/*             Leave records
  /api/dashboard/*          Aggregated read-only views
  /api/config/*             Statuses, flags, roles
  /api/keys/*               API key provisioning

SEE ALSO:
  - handlers.go and siblings: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/allocation-tracker/config"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			if cfg.AuthEnabled {
				r.Use(h.RequireAPIKey)
			}

			r.Route("/resources", func(r chi.Router) {
				r.Get("/", h.ListResources)
				r.Post("/", h.CreateResource)
				r.Get("/{id}", h.GetResource)
				r.Patch("/{id}", h.UpdateResource)
				r.Delete("/{id}", h.DeleteResource)
				r.Get("/{id}/leaves", h.ListResourceLeaves)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", h.ListProjects)
				r.Post("/", h.CreateProject)
				r.Get("/{id}", h.GetProject)
				r.Patch("/{id}", h.UpdateProject)
				r.Delete("/{id}", h.DeleteProject)
			})

			r.Route("/allocations", func(r chi.Router) {
				r.Get("/", h.ListAllocations)
				r.Post("/", h.CreateAllocation)
				r.Post("/bulk", h.BulkUpsertAllocations)
				r.Post("/assign-resource", h.AssignResource)
				r.Get("/{id}", h.GetAllocation)
				r.Patch("/{id}", h.UpdateAllocation)
				r.Delete("/{id}", h.DeleteAllocation)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", h.ListLeaves)
				r.Post("/", h.CreateLeave)
				r.Get("/{id}", h.GetLeave)
				r.Patch("/{id}", h.UpdateLeave)
				r.Delete("/{id}", h.DeleteLeave)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/overview", h.DashboardOverview)
				r.Get("/monthly", h.DashboardMonthly)
				r.Get("/resource/{id}", h.DashboardResource)
				r.Get("/project/{id}", h.DashboardProject)
			})

			r.Route("/config", func(r chi.Router) {
				r.Get("/statuses", h.ListStatuses)
				r.Post("/statuses", h.CreateStatus)
				r.Patch("/statuses/{id}", h.UpdateStatus)
				r.Delete("/statuses/{id}", h.DeleteStatus)

				r.Get("/flags", h.ListFlags)
				r.Post("/flags", h.CreateFlag)
				r.Patch("/flags/{id}", h.UpdateFlag)
				r.Delete("/flags/{id}", h.DeleteFlag)

				r.Get("/roles", h.ListRoles)
				r.Post("/roles", h.CreateRole)
				r.Patch("/roles/{id}", h.UpdateRole)
				r.Delete("/roles/{id}", h.DeleteRole)
			})

			r.Route("/keys", func(r chi.Router) {
				r.Get("/", h.ListAPIKeys)
				r.Post("/", h.CreateAPIKey)
				r.Delete("/{id}", h.DeleteAPIKey)
			})

			r.Post("/admin/seed", h.SeedDemoData)
		})
	})

	return r
}

// requestLogger logs each request with method, path, status, and duration.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.Log.WithFields(map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}
