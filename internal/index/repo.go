package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultSearchLimit caps results when the caller passes no limit.
const DefaultSearchLimit = 20

// PostRow represents a row in the posts table.
type PostRow struct {
	ID        string
	Title     string
	Date      time.Time
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertPost inserts or replaces a post and its FTS entry within a transaction.
// body is the plain-text rendition of the post used for matching.
func (db *DB) UpsertPost(p PostRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO posts (id, title, date, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			date       = excluded.date,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, p.ID, p.Title, p.Date.UTC().Format(dateLayout), p.Checksum, body, updated.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	if err := ftsUpsert(tx, p.ID, p.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePost removes a post and its FTS entry.
func (db *DB) DeletePost(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete post: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a post, or "" if it is not indexed.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM posts WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// Count returns the number of indexed posts.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
