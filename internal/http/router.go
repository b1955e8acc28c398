// Package http wires the chi router: the authenticated tenant API
// under /api/v1 and the public signing flow under /public.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups everything the router mounts. Public is the only
// surface reachable without a bearer token.
type Handlers struct {
	Transactions interface{ Routes(chi.Router) }
	Categories   interface{ Routes(chi.Router) }
	Metrics      interface{ Routes(chi.Router) }
	Profile      interface{ Routes(chi.Router) }
	Contracts    interface {
		Routes(chi.Router)
		TemplateRoutes(chi.Router)
	}
	Public interface{ Routes(chi.Router) }
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Contract-Pdf-Url"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticator(opts.JWTSecret))

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			h.Categories.Routes(r)
		})

		r.Route("/metrics", h.Metrics.Routes)

		r.Route("/profile", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Profile.Routes(r)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Contracts.Routes(r)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Contracts.TemplateRoutes(r)
		})
	})

	router.Route("/public", h.Public.Routes)

	return router
}
