package api

import (
	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/profile"
)

// PostListResponse wraps the post listing.
type PostListResponse struct {
	Posts []models.Post `json:"posts" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []blog.SearchHit `json:"results" validate:"required"`
}

// ExperienceResponse wraps the work history.
type ExperienceResponse struct {
	Experience []profile.Experience `json:"experience" validate:"required"`
}

// WorksResponse wraps the project list.
type WorksResponse struct {
	Works []profile.Work `json:"works" validate:"required"`
}

// ReloadResponse is returned by the admin reload endpoint.
type ReloadResponse = posts.ReloadResult
