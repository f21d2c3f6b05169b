// Package parser splits content files into JSON metadata and a Markdown body.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/starford/folio/internal/apperr"
)

// Delimiter separates the metadata block from the Markdown body.
const Delimiter = "---\n"

// Result holds the output of parsing a content file.
type Result struct {
	ID    string
	Date  time.Time
	Title string
	Meta  map[string]any // every metadata key except date and title
	Body  string
}

// Parse splits data on the first delimiter, decodes the metadata block as a
// JSON object and extracts the required date and title fields. name is the
// file name the id is derived from.
func Parse(name string, data []byte) (*Result, error) {
	metaBlock, body, err := Split(data)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", name, err)
	}

	var meta map[string]any
	if err := json.Unmarshal(metaBlock, &meta); err != nil {
		return nil, fmt.Errorf("parser: %s: %w: %w", name, apperr.ErrMalformedMetadata, err)
	}
	if meta == nil {
		return nil, fmt.Errorf("parser: %s: %w: metadata is not an object", name, apperr.ErrMalformedMetadata)
	}

	date, err := parseDate(meta["date"])
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w: date: %w", name, apperr.ErrMalformedMetadata, err)
	}
	title, ok := meta["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("parser: %s: %w: title is required", name, apperr.ErrMalformedMetadata)
	}
	delete(meta, "date")
	delete(meta, "title")

	return &Result{
		ID:    IDFromName(name),
		Date:  date,
		Title: title,
		Meta:  meta,
		Body:  body,
	}, nil
}

// Split returns the bytes before the first delimiter and everything after
// it. Later delimiters stay in the body untouched.
func Split(data []byte) ([]byte, string, error) {
	meta, body, found := bytes.Cut(data, []byte(Delimiter))
	if !found {
		return nil, "", fmt.Errorf("%w: missing %q delimiter", apperr.ErrMalformedMetadata, strings.TrimSpace(Delimiter))
	}
	return meta, string(body), nil
}

// IDFromName returns the file name up to its first dot.
func IDFromName(name string) string {
	id, _, _ := strings.Cut(name, ".")
	return id
}

// parseDate accepts a date string in any common layout (UTC unless the
// string carries a zone) or a number of Unix milliseconds.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case string:
		t, err := dateparse.ParseIn(strings.TrimSpace(d), time.UTC)
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return time.Time{}, fmt.Errorf("invalid timestamp %v", d)
		}
		return time.UnixMilli(int64(d)).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("missing")
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", v)
	}
}
