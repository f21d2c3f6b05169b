// Package blog ties the post catalog, the search index, the profile data and
// the feed together behind one read-only service.
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/feed"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/profile"
)

// SearchHit is one search result joined with the cached post.
type SearchHit struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Date    time.Time `json:"date"`
	Snippet string    `json:"snippet"`
}

// FeedDocument is a rendered RSS document and its entity tag.
type FeedDocument struct {
	Body []byte
	ETag string
}

// ReloadListener is told about every successful reload.
type ReloadListener func(res posts.ReloadResult)

// Service coordinates the catalog, index and feed.
type Service struct {
	catalog *posts.Catalog
	index   index.PostIndex
	profile *profile.Profile
	channel feed.Channel
	logger  *slog.Logger

	mu        sync.Mutex
	feedFor   *posts.Collection
	feedDoc   FeedDocument
	listeners []ReloadListener
}

// NewService creates a service. prof may be nil when no profile is configured.
func NewService(catalog *posts.Catalog, idx index.PostIndex, prof *profile.Profile, ch feed.Channel, logger *slog.Logger) *Service {
	if prof == nil {
		prof = &profile.Profile{Experience: []profile.Experience{}, Works: []profile.Work{}}
	}
	return &Service{
		catalog: catalog,
		index:   idx,
		profile: prof,
		channel: ch,
		logger:  logger,
	}
}

// OnReload registers fn to run after each successful reload.
func (s *Service) OnReload(fn ReloadListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Catalog returns the underlying catalog.
func (s *Service) Catalog() *posts.Catalog {
	return s.catalog
}

// ListPosts returns every post, newest first, without content or HTML.
func (s *Service) ListPosts(_ context.Context) []models.Post {
	return s.catalog.Collection().Summaries()
}

// GetPost returns one post with its rendered HTML, or apperr.ErrNotFound.
func (s *Service) GetPost(_ context.Context, id string) (models.Post, error) {
	return s.catalog.Collection().Find(id)
}

// Search queries the index and drops hits the catalog no longer knows.
func (s *Service) Search(_ context.Context, query string, limit int) ([]SearchHit, error) {
	results, err := s.index.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("blog: search: %w", err)
	}
	coll := s.catalog.Collection()
	out := make([]SearchHit, 0, len(results))
	for _, r := range results {
		p, err := coll.Find(r.ID)
		if err != nil {
			continue
		}
		out = append(out, SearchHit{ID: p.ID, Title: p.Title, Date: p.Date, Snippet: r.Snippet})
	}
	return out, nil
}

// Feed returns the RSS document for the current collection. The document is
// rendered once per catalog snapshot.
func (s *Service) Feed(_ context.Context) (FeedDocument, error) {
	coll := s.catalog.Collection()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedFor == coll {
		return s.feedDoc, nil
	}
	body, err := feed.Render(s.channel, coll.Summaries())
	if err != nil {
		return FeedDocument{}, fmt.Errorf("blog: feed: %w", err)
	}
	s.feedFor = coll
	s.feedDoc = FeedDocument{Body: body, ETag: checksum.ETag(body)}
	return s.feedDoc, nil
}

// Experience returns the work history.
func (s *Service) Experience() []profile.Experience {
	return s.profile.Experience
}

// Works returns the showcased projects.
func (s *Service) Works() []profile.Work {
	return s.profile.Works
}

// SyncIndex brings the search index in line with the current collection.
func (s *Service) SyncIndex(_ context.Context) error {
	if _, err := index.Sync(s.index, s.catalog.Collection().All(), s.logger); err != nil {
		return fmt.Errorf("blog: sync index: %w", err)
	}
	return nil
}

// Reload re-reads the posts directory, then updates the index and notifies
// listeners. A failed load leaves everything as it was.
func (s *Service) Reload(ctx context.Context) (posts.ReloadResult, error) {
	res, err := s.catalog.Reload(ctx)
	if err != nil {
		return posts.ReloadResult{}, err
	}
	s.AfterReload(ctx, res)
	return res, nil
}

// AfterReload runs the follow-up work of a catalog reload. It is the
// callback handed to the catalog watcher.
func (s *Service) AfterReload(ctx context.Context, res posts.ReloadResult) {
	if err := s.SyncIndex(ctx); err != nil {
		s.logger.Error("blog: index sync after reload failed", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	listeners := append([]ReloadListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(res)
	}
}
