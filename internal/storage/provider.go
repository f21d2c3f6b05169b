// Package storage defines the read-only posts directory abstraction.
package storage

import "github.com/starford/folio/internal/models"

// Provider is the interface for reading content files. Content is written by
// hand outside the service, so there are no mutating operations.
type Provider interface {
	// List returns every regular, non-hidden file directly under the root.
	List() ([]models.FileMeta, error)
	// Read returns the raw bytes of the named file.
	Read(name string) ([]byte, error)
	// Root returns the absolute directory the provider reads from.
	Root() string
}
