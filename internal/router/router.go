// Package router sets up all HTTP routes and middleware chains for the
// shopdesk server. Auth endpoints are public; everything touching the
// catalog requires a session.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopdesk/internal/handlers"
	"shopdesk/internal/middleware"
	"shopdesk/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. secureCookies marks the CSRF token cookie
// HTTPS-only and should be true outside development.
func New(sessionStore *session.Store, auth *handlers.Auth, products *handlers.Products, limiter *middleware.RateLimiter, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(limiter.Middleware)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(secureCookies))

		// Auth endpoints — accessible without a session.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", auth.Signup)
			r.Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)
			r.Get("/me", auth.Me)
		})

		// Catalog management — session required.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", products.List)
				r.Post("/", products.Create)
				r.Get("/category/{category}", products.ListByCategory)
				r.Get("/{id}", products.Get)
				r.Put("/{id}", products.Update)
				r.Delete("/{id}", products.Delete)
			})

			r.Get("/categories", products.Categories)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
