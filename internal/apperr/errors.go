// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a post id is not in the loaded collection.
	ErrNotFound = errors.New("not found")
	// ErrMalformedMetadata is returned when a content file has no delimiter,
	// invalid JSON metadata, or is missing a required field.
	ErrMalformedMetadata = errors.New("malformed metadata")
)
