/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Recoverer:  Panic recovery (500 instead of crash)
  2. RequestID:  Unique ID per request for tracing
  3. CORS:       Cross-origin requests for frontend
  4. Auth:       Bearer token, mounted on everything except /api/auth

ROUTE GROUPS:
  /api/auth/*               Login (public)
  /api/users/*              User management
  /api/leave-balances/*     Balances and accruals
  /api/time-records/*       Check-in/out, listings, hours reports
  /api/adjustments/*        Correction proposals and reviews
  /api/time-off-requests/*  Leave requests and reviews

AUTHORIZATION:
  The router only authenticates. Role and ownership checks live in the
  handlers, next to the queries whose scope they decide.

SEE ALSO:
  - handlers.go: Handler implementations
  - auth/middleware.go: Token verification
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/atempo/hr-engine/auth"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	authenticate := auth.Middleware(h.TokenSecret, h.Store, func(w http.ResponseWriter, r *http.Request, err error) {
		h.handleError(w, r, err)
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Login)

		// Everything below requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/me", h.GetMe)
				r.Put("/me", h.UpdateMe)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})

			r.Route("/leave-balances", func(r chi.Router) {
				r.Get("/", h.ListBalances)
				r.Get("/me", h.ListMyBalances)
				r.Post("/accrue", h.Accrue)
			})

			r.Route("/time-records", func(r chi.Router) {
				r.Get("/", h.SearchTimeRecords)
				r.Post("/", h.CreateTimeRecord)
				r.Get("/me", h.ListMyTimeRecords)
				r.Get("/hours/weekly", h.WeeklyHours)
				r.Get("/hours/monthly", h.MonthlyHours)
			})

			r.Route("/adjustments", func(r chi.Router) {
				r.Get("/", h.ListAdjustments)
				r.Post("/", h.CreateAdjustment)
				r.Get("/me", h.ListMyAdjustments)
				r.Post("/{id}/review", h.ReviewAdjustment)
			})

			r.Route("/time-off-requests", func(r chi.Router) {
				r.Get("/", h.ListTimeOffRequests)
				r.Post("/", h.CreateTimeOffRequest)
				r.Get("/me", h.ListMyTimeOffRequests)
				r.Get("/{id}", h.GetTimeOffRequest)
				r.Post("/{id}/review", h.ReviewTimeOffRequest)
			})
		})
	})

	return r
}
