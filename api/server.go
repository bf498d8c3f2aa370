/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/years/*       Year configuration + global day overrides
  /api/persons/*     Person directory + per-person records
  /api/scenarios/*   Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public; run this
  behind your own auth proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Year configuration + global overrides
		r.Route("/years", func(r chi.Router) {
			r.Get("/", h.ListYears)
			r.Post("/", h.AddYear)
			r.Route("/{year}", func(r chi.Router) {
				r.Put("/", h.UpdateYear)
				r.Delete("/", h.DeleteYear)
				r.Put("/holidays-imported", h.SetHolidaysImported)

				r.Route("/global-days", func(r chi.Router) {
					r.Get("/", h.ListGlobalDays)
					r.Put("/", h.SetGlobalDay)
					r.Delete("/", h.DeleteGlobalDay)
					r.Post("/batch", h.BatchSetGlobalDays)
				})
			})
		})

		// Person directory + per-person records
		r.Route("/persons", func(r chi.Router) {
			r.Get("/", h.ListPersons)
			r.Post("/", h.CreatePerson)
			r.Put("/order", h.ReorderPersons)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", h.RenamePerson)
				r.Delete("/", h.DeletePerson)
				r.Put("/days", h.SetDayEntry)
				r.Delete("/days", h.DeleteDayEntry)
				r.Route("/years/{year}", func(r chi.Router) {
					r.Put("/yearly-data", h.SaveYearlyData)
					r.Get("/summary", h.GetYearSummary)
				})
			})
		})

		// Demo scenarios
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
