/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the web client

ROUTE GROUPS:
  /api/state, /api/balances, /api/consistency, /api/reset   Ledger state
  /api/history, /api/entries/*, /api/expiring               Entries
  /api/custom-fields/*                                      Custom fields
  /api/user, /api/advisor, /api/worklogs/*                  Profile and extras
  /metrics                                                  Prometheus
  /healthz                                                  Liveness

SECURITY NOTE:
  No authentication middleware. Bind to localhost unless a proxy in front
  of it handles access.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/marinalog/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. metrics may be
// nil, in which case /metrics is not mounted. An empty allowedOrigins means
// the local web client only.
func NewRouter(h *Handler, metrics *Metrics, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	// Credentials are never sent to a wildcard origin.
	allowCredentials := true
	for _, o := range allowedOrigins {
		if o == "*" {
			allowCredentials = false
		}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: allowCredentials,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/balances", h.GetBalances)
		r.Get("/consistency", h.CheckConsistency)
		r.Post("/reset", h.Reset)

		r.Get("/history", h.GetHistory)
		r.Get("/expiring", h.GetExpiring)

		// Entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", h.ApplyEntry)
			r.Post("/preview", h.PreviewEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		// Custom field routes
		r.Route("/custom-fields", func(r chi.Router) {
			r.Get("/", h.ListCustomFields)
			r.Post("/", h.CreateCustomField)
			r.Delete("/{id}", h.DeleteCustomField)
		})

		// Profile routes
		r.Get("/user", h.GetUser)
		r.Put("/user", h.UpdateUser)

		r.Post("/advisor", h.AskAdvisor)

		// Work log routes
		r.Route("/worklogs", func(r chi.Router) {
			r.Get("/", h.ListWorkLogs)
			r.Post("/", h.CreateWorkLog)
			r.Put("/{id}", h.UpdateWorkLog)
			r.Delete("/{id}", h.DeleteWorkLog)
		})
	})

	return r
}
