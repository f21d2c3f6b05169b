package posts

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/storage"
)

const watchDebounce = 200 * time.Millisecond

// ReloadCallback is called after a watcher-driven reload succeeded.
type ReloadCallback func(res ReloadResult)

// Watch reloads the catalog whenever a file in its directory is created,
// written, removed or renamed, until ctx is cancelled. Bursts of events
// (editors write, rename and chmod in quick succession) collapse into a
// single reload. A failed reload is logged and the old snapshot stays.
func (c *Catalog) Watch(ctx context.Context, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := c.Dir()
	if err := w.Add(dir); err != nil {
		return err
	}
	c.logger.Info("watcher: started", slog.String("dir", dir))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			c.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			res, err := c.Reload(ctx)
			if err != nil {
				c.logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			if cb != nil {
				cb(res)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if storage.IsHidden(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			c.logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
