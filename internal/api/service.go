package api

import (
	"context"

	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/profile"
)

// Service is what the handlers need from the blog layer.
type Service interface {
	ListPosts(ctx context.Context) []models.Post
	GetPost(ctx context.Context, id string) (models.Post, error)
	Search(ctx context.Context, query string, limit int) ([]blog.SearchHit, error)
	Feed(ctx context.Context) (blog.FeedDocument, error)
	Experience() []profile.Experience
	Works() []profile.Work
	Reload(ctx context.Context) (posts.ReloadResult, error)
}

var _ Service = (*blog.Service)(nil)
