// Package router sets up all HTTP routes and middleware chains for the
// lifecat API. Every route is a read-only view of the current taxonomy
// snapshot except the reload endpoint.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifecat/internal/catalog"
	"lifecat/internal/handlers"
	"lifecat/internal/middleware"
)

// Options carries the optional pieces of the middleware stack.
type Options struct {
	// CORSOrigins lists the origins allowed to call the API. Empty
	// disables CORS headers.
	CORSOrigins []string

	// Limiter guards the search and reload routes. Nil disables limiting.
	Limiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(svc *catalog.Service, categories *handlers.Categories, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(opts.CORSOrigins))
	}

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(svc))

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", categories.List)
		r.Get("/main", categories.Main)
		r.Get("/tree", categories.Tree)
		r.Get("/slug/{slug}", categories.BySlug)

		// Search and reload do the most work per request.
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(opts.Limiter.Middleware)
			}
			r.Get("/search", categories.Search)
			r.Post("/reload", categories.Reload)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", categories.Get)
			r.Get("/children", categories.Children)
			r.Get("/descendants", categories.Descendants)
			r.Get("/path", categories.Path)
			r.Get("/find", categories.Find)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, `{"error":"not found"}`)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, `{"error":"method not allowed"}`)
	})

	return r
}

// healthHandler returns a simple JSON liveness response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, `{"status":"ok"}`)
}

// readyHandler reports ready once a taxonomy snapshot has been built.
func readyHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !svc.Loaded() {
			writeStatus(w, http.StatusServiceUnavailable, `{"status":"loading"}`)
			return
		}
		writeStatus(w, http.StatusOK, `{"status":"ready"}`)
	}
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
