package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes, to be mounted at /api.
// Reads are public. Admin routes and the event stream sit behind the
// Bearer token when authEnabled is true. sseHandler may be nil.
func NewRouter(svc Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{id}", h.GetPost)
	r.Get("/search", h.Search)
	r.Get("/experience", h.Experience)
	r.Get("/works", h.Works)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))
		r.Post("/admin/reload", h.Reload)
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
