package posts

import (
	"slices"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// Collection is an immutable, ordered set of posts with lookup by id.
type Collection struct {
	posts []models.Post
	byID  map[string]int
}

// NewCollection indexes posts by id. When two posts share an id the one
// that comes first (the newer) wins.
func NewCollection(posts []models.Post) *Collection {
	c := &Collection{
		posts: slices.Clone(posts),
		byID:  make(map[string]int, len(posts)),
	}
	for i, p := range c.posts {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = i
	}
	return c
}

// Len returns the number of posts.
func (c *Collection) Len() int {
	return len(c.posts)
}

// All returns a copy of the posts, newest first.
func (c *Collection) All() []models.Post {
	return slices.Clone(c.posts)
}

// Summaries returns the posts without raw content or rendered HTML.
func (c *Collection) Summaries() []models.Post {
	out := make([]models.Post, len(c.posts))
	for i, p := range c.posts {
		out[i] = p.Summary()
	}
	return out
}

// Find returns the post with the given id or apperr.ErrNotFound.
func (c *Collection) Find(id string) (models.Post, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Post{}, apperr.ErrNotFound
	}
	return c.posts[i], nil
}
