package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
)

// DirSource serves bundles from a local directory laid out as
// <root>/<language>/<set>, mirroring the remote layout.
type DirSource struct {
	root string // absolute path to the content directory
}

// NewDirSource creates a DirSource rooted at the given directory.
// The directory must already exist.
func NewDirSource(root string) (*DirSource, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("content: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("content: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content: root is not a directory: %s", abs)
	}
	return &DirSource{root: abs}, nil
}

// Root returns the absolute content directory.
func (d *DirSource) Root() string { return d.root }

// safePath joins rel onto the root and rejects anything that escapes it.
func (d *DirSource) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("content: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(d.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("content: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("content: path escapes content root: %s", rel)
	}
	return abs, nil
}

// Fetch implements Source.
func (d *DirSource) Fetch(ctx context.Context, lang models.Language, set string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Lang: lang, Set: set, Err: err}
	}
	abs, err := d.safePath(filepath.Join(string(lang), set))
	if err != nil {
		return nil, &FetchError{Lang: lang, Set: set, Err: err}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &FetchError{Lang: lang, Set: set, Err: apperr.ErrNotFound}
		}
		return nil, &FetchError{Lang: lang, Set: set, Err: err}
	}
	return data, nil
}
