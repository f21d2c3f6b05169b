package index

import (
	"fmt"
	"log/slog"
	"strconv"

	stripMarkdown "github.com/writeas/go-strip-markdown/v2"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
)

// SyncResult counts what Sync did.
type SyncResult struct {
	Indexed int
	Removed int
}

// Sync brings the index up to date with posts:
//   - new or changed posts are upserted
//   - indexed ids missing from posts are deleted
//
// Posts should carry their raw Content; without it only the title is searchable.
func Sync(db PostIndex, posts []models.Post, logger *slog.Logger) (SyncResult, error) {
	var res SyncResult

	checksums, err := db.AllChecksums()
	if err != nil {
		return res, err
	}

	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}

		cs := postChecksum(p)
		if checksums[p.ID] == cs {
			continue
		}
		row := PostRow{ID: p.ID, Title: p.Title, Date: p.Date, Checksum: cs}
		if err := db.UpsertPost(row, plainBody(p.Content)); err != nil {
			return res, fmt.Errorf("index: sync %s: %w", p.ID, err)
		}
		res.Indexed++
		logger.Debug("sync: indexed", slog.String("id", p.ID))
	}

	for id := range checksums {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := db.DeletePost(id); err != nil {
			return res, fmt.Errorf("index: sync delete %s: %w", id, err)
		}
		res.Removed++
		logger.Debug("sync: removed stale", slog.String("id", id))
	}

	logger.Info("sync: done",
		slog.Int("posts", len(seen)),
		slog.Int("indexed", res.Indexed),
		slog.Int("removed", res.Removed))
	return res, nil
}

func postChecksum(p models.Post) string {
	return checksum.Sum([]byte(p.ID + "\x00" + p.Title + "\x00" +
		strconv.FormatInt(p.Date.UnixMilli(), 10) + "\x00" + p.Content))
}

// plainBody returns the Markdown body of a raw content file as plain text.
func plainBody(content string) string {
	if content == "" {
		return ""
	}
	_, body, err := parser.Split([]byte(content))
	if err != nil {
		return ""
	}
	return stripMarkdown.Strip(body)
}
