//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts5(
			id UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, title, body string) error {
	if err := ftsDelete(tx, id); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO posts_fts (id, title, body) VALUES (?, ?, ?)`, id, title, body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) error {
	if _, err := tx.Exec(`DELETE FROM posts_fts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// matchExpr turns free text into an FTS5 query where every word must appear.
// Each word is quoted so operators and punctuation in user input stay literal.
func matchExpr(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

// Search performs an FTS5 full-text search and returns matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	expr := matchExpr(query)
	if expr == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       title,
		       snippet(posts_fts, 2, '', '', '...', 32)
		FROM posts_fts
		WHERE posts_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, expr, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
