// internal/router/router.go
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unclebandit/coldmail-tracker/internal/controller"
	"github.com/unclebandit/coldmail-tracker/internal/handler"
	"github.com/unclebandit/coldmail-tracker/internal/pkg/httputil"
)

type Options struct {
	PathPrefix     string
	AllowedOrigins []string
	// AccessLog toggles chi's request logger.
	AccessLog bool
}

// New wires the email routes under opts.PathPrefix (default /api).
func New(ctrl *controller.EmailController, h *handler.EmailHandler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	prefix := opts.PathPrefix
	if prefix == "" {
		prefix = "/api"
	}

	r.Get("/health", health)

	r.Route(prefix, func(r chi.Router) {
		r.Get("/health", health)

		r.Route("/emails", func(r chi.Router) {
			r.Get("/", ctrl.ListEmails)
			r.Post("/", ctrl.CreateEmail)
			// static segments before /{id}
			r.Get("/stats", h.StatsHandler)
			r.Get("/filter/{status}", h.FilterByStatusHandler)

			r.Get("/{id}", ctrl.GetEmail)
			r.Put("/{id}", ctrl.UpdateEmail)
			r.Delete("/{id}", ctrl.DeleteEmail)
			r.Post("/{id}/toggle/{field}", h.ToggleHandler)
		})
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}
