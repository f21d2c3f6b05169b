// Package posts loads a directory of content files into an ordered,
// addressable collection of posts.
package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/storage"
)

// Renderer converts a Markdown body to HTML.
type Renderer interface {
	Render(src []byte) (string, error)
}

// Options controls what a load keeps for each post. A listing needs neither
// field; a detail page needs Render.
type Options struct {
	Render         bool // fill Post.HTML from the Markdown body
	IncludeContent bool // keep the raw file text in Post.Content
}

// Loader reads every file of a storage.Provider into posts.
type Loader struct {
	store    storage.Provider
	renderer Renderer
}

// NewLoader creates a Loader. renderer may be nil when no load will ask for
// rendered HTML.
func NewLoader(store storage.Provider, renderer Renderer) *Loader {
	return &Loader{store: store, renderer: renderer}
}

// Store returns the provider the loader reads from.
func (l *Loader) Store() storage.Provider {
	return l.store
}

// LoadAll parses every file in the directory and returns the posts newest
// first. Posts with equal dates keep file name order. The first unreadable
// or malformed file aborts the whole load.
func (l *Loader) LoadAll(ctx context.Context, opts Options) ([]models.Post, error) {
	if opts.Render && l.renderer == nil {
		return nil, errors.New("posts: render requested without a renderer")
	}
	files, err := l.store.List()
	if err != nil {
		return nil, fmt.Errorf("posts: list: %w", err)
	}

	out := make([]models.Post, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := l.loadFile(f.Name, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (l *Loader) loadFile(name string, opts Options) (models.Post, error) {
	data, err := l.store.Read(name)
	if err != nil {
		return models.Post{}, fmt.Errorf("posts: %w", err)
	}
	res, err := parser.Parse(name, data)
	if err != nil {
		return models.Post{}, fmt.Errorf("posts: %w", err)
	}

	p := models.Post{
		ID:    res.ID,
		Date:  res.Date,
		Title: res.Title,
		Meta:  res.Meta,
	}
	if opts.IncludeContent {
		p.Content = string(data)
	}
	if opts.Render {
		html, err := l.renderer.Render([]byte(res.Body))
		if err != nil {
			return models.Post{}, fmt.Errorf("posts: %s: %w", name, err)
		}
		p.HTML = html
	}
	return p, nil
}

// LoadDir is a one-shot LoadAll over dir.
func LoadDir(ctx context.Context, dir string, renderer Renderer, opts Options) ([]models.Post, error) {
	store, err := storage.NewFS(dir)
	if err != nil {
		return nil, err
	}
	return NewLoader(store, renderer).LoadAll(ctx, opts)
}
