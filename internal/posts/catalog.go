package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
)

// ReloadResult describes what a reload changed.
type ReloadResult struct {
	Count   int      `json:"count"`
	Changed []string `json:"changed"` // added or modified ids
	Removed []string `json:"removed"`
}

// Catalog is the process-wide post cache. It is loaded once when created
// and only replaced as a whole by Reload; readers always see a complete
// collection. Files edited on disk stay invisible until the next Reload.
type Catalog struct {
	loader *Loader
	opts   Options
	logger *slog.Logger

	current  atomic.Pointer[Collection]
	loadedAt atomic.Int64
	mu       sync.Mutex // serializes reloads
}

// NewCatalog performs the initial load. Any malformed post fails it.
func NewCatalog(ctx context.Context, loader *Loader, opts Options, logger *slog.Logger) (*Catalog, error) {
	c := &Catalog{loader: loader, opts: opts, logger: logger}
	all, err := loader.LoadAll(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog: initial load: %w", err)
	}
	c.store(NewCollection(all))
	logger.Info("catalog: loaded",
		slog.Int("posts", len(all)),
		slog.String("dir", loader.Store().Root()))
	return c, nil
}

// Collection returns the current snapshot.
func (c *Catalog) Collection() *Collection {
	return c.current.Load()
}

// LoadedAt returns when the current snapshot was built.
func (c *Catalog) LoadedAt() time.Time {
	return time.Unix(0, c.loadedAt.Load())
}

// Dir returns the directory the catalog reads from.
func (c *Catalog) Dir() string {
	return c.loader.Store().Root()
}

// Reload re-reads the directory and swaps in the new collection. On error
// the previous collection keeps being served.
func (c *Catalog) Reload(ctx context.Context) (ReloadResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.loader.LoadAll(ctx, c.opts)
	if err != nil {
		return ReloadResult{}, fmt.Errorf("catalog: reload: %w", err)
	}
	next := NewCollection(all)
	res := diff(c.current.Load(), next)
	c.store(next)

	c.logger.Info("catalog: reloaded",
		slog.Int("posts", res.Count),
		slog.Int("changed", len(res.Changed)),
		slog.Int("removed", len(res.Removed)))
	return res, nil
}

func (c *Catalog) store(coll *Collection) {
	c.current.Store(coll)
	c.loadedAt.Store(time.Now().UnixNano())
}

func diff(prev, next *Collection) ReloadResult {
	res := ReloadResult{Count: next.Len(), Changed: []string{}, Removed: []string{}}
	for id, i := range next.byID {
		old, err := prev.Find(id)
		if err != nil || fingerprint(old) != fingerprint(next.posts[i]) {
			res.Changed = append(res.Changed, id)
		}
	}
	for id := range prev.byID {
		if _, ok := next.byID[id]; !ok {
			res.Removed = append(res.Removed, id)
		}
	}
	slices.Sort(res.Changed)
	slices.Sort(res.Removed)
	return res
}

func fingerprint(p models.Post) string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return checksum.Sum(data)
}
