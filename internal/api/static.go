package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/storage"
)

// StaticHandler serves the images referenced by posts and works from a
// flat directory.
type StaticHandler struct {
	dir string
}

// NewStaticHandler creates a handler rooted at dir. An empty dir serves nothing.
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal, not hidden) and returns its absolute path.
func (h *StaticHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || storage.IsHidden(cleaned) {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return filepath.Join(h.dir, cleaned), nil
}

// ServeFile handles GET /static/{filename}.
func (h *StaticHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	if h.dir == "" {
		http.NotFound(w, r)
		return
	}
	abs, err := h.safeName(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
