package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pharmhub-dev/pharmhub/internal/middleware/metrics"
	"github.com/pharmhub-dev/pharmhub/internal/setup"
)

// New creates and configures the chi router with all the routes.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chi_middleware.Recoverer)
	r.Use(metrics.Middleware)

	// Cookies ride cross-site, so credentials must be allowed and origins pinned.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/refresh", h.Refresh)
			r.Post("/password-reset", h.RequestPasswordReset)
			r.Post("/password-reset/confirm", h.ConfirmPasswordReset)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMw.AdminOnly())
			r.Post("/register", h.AdminRegister)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(authMw.AdminOnly()).Get("/", h.GetUsers)
			r.With(authMw.AdminOnly()).Delete("/{id}", h.DeleteUser)
			r.With(authMw.NeedAuth()).Get("/{id}", h.GetUser)
			r.With(authMw.NeedAuth()).Put("/{id}", h.UpdateUser)
		})

		r.Post("/contact", h.Contact)
	})

	return r
}
