package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const maxSearchLimit = 100

// Handler holds API route handlers.
type Handler struct {
	svc Service
}

// NewHandler creates a new Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, newest first, without bodies
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	PostListResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	list := h.svc.ListPosts(r.Context())
	writeJSON(w, http.StatusOK, PostListResponse{Posts: list, Total: len(list)})
}

// GetPost handles GET /api/posts/{id}.
//
//	@Summary		Get a single post with rendered HTML
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		string	true	"Post id"
//	@Success		200	{object}	models.Post
//	@Failure		404	{object}	errResponse
//	@Router			/posts/{id} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, "get post", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Experience handles GET /api/experience.
//
//	@Summary		Work history
//	@Tags			profile
//	@Produce		json
//	@Success		200	{object}	ExperienceResponse
//	@Router			/experience [get]
func (h *Handler) Experience(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ExperienceResponse{Experience: h.svc.Experience()})
}

// Works handles GET /api/works.
//
//	@Summary		Showcased projects
//	@Tags			profile
//	@Produce		json
//	@Success		200	{object}	WorksResponse
//	@Router			/works [get]
func (h *Handler) Works(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, WorksResponse{Works: h.svc.Works()})
}

// Reload handles POST /api/admin/reload.
//
//	@Summary		Re-read the posts directory
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	ReloadResponse
//	@Failure		401	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Reload(r.Context())
	if err != nil {
		writeError(w, "reload", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
