package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/folio/internal/models"
)

// FS implements Provider backed by a local directory.
type FS struct {
	root string // absolute path to the posts directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute posts directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a file name against the root. Only plain names are
// accepted: separators, traversal and absolute paths are rejected.
func (f *FS) safePath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("storage: empty file name")
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("storage: invalid file name: %s", name)
	}
	abs := filepath.Join(f.root, name)
	if filepath.Dir(abs) != f.root {
		return "", fmt.Errorf("storage: path escapes root: %s", name)
	}
	return abs, nil
}

// List returns metadata for the files directly under root, sorted by name.
// Sub-directories and dot-files (editor swap files, .DS_Store) are skipped.
// Symbolic links are followed; a dangling link is an error.
func (f *FS) List() ([]models.FileMeta, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	out := make([]models.FileMeta, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || IsHidden(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", e.Name(), err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			info, err = os.Stat(filepath.Join(f.root, e.Name()))
			if err != nil {
				return nil, fmt.Errorf("storage: follow link %s: %w", e.Name(), err)
			}
		}
		if !info.Mode().IsRegular() {
			continue
		}
		out = append(out, models.FileMeta{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Read returns the raw bytes of a file under root.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// IsHidden reports whether name is a dot-file.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
