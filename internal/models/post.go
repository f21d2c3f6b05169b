// Package models defines the domain types for folio.
package models

import (
	"encoding/json"
	"time"
)

// Post is a single blog entry parsed from one content file.
type Post struct {
	ID      string
	Date    time.Time
	Title   string
	Meta    map[string]any // extra metadata fields, passed through as-is
	Content string         // raw file text, set only when requested
	HTML    string         // rendered body, set only when requested
}

// Summary returns a copy of p without the raw content and rendered HTML.
func (p Post) Summary() Post {
	p.Content = ""
	p.HTML = ""
	return p
}

// MarshalJSON flattens Meta onto the record so extra fields sit next to
// id, title and date. The typed fields win over same-named metadata keys,
// and metadata can never supply content or html.
func (p Post) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Meta)+5)
	for k, v := range p.Meta {
		out[k] = v
	}
	delete(out, "content")
	delete(out, "html")
	out["id"] = p.ID
	out["title"] = p.Title
	out["date"] = p.Date.UTC().Format(time.RFC3339Nano)
	if p.Content != "" {
		out["content"] = p.Content
	}
	if p.HTML != "" {
		out["html"] = p.HTML
	}
	return json.Marshal(out)
}

// FileMeta describes one entry of the posts directory.
type FileMeta struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}
