// Package content fetches raw course-set bundles per language and caches
// the base/overlay pair for each course id.
package content

import (
	"context"
	"fmt"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
)

// Source is the remote content contract: the raw bundle bytes for one
// course set in one language.
type Source interface {
	Fetch(ctx context.Context, lang models.Language, set string) ([]byte, error)
}

// FetchError reports a single failed bundle request. It always matches
// apperr.ErrUnavailable; a missing bundle also matches apperr.ErrNotFound.
type FetchError struct {
	Lang   models.Language
	Set    string
	Status int // HTTP status, 0 for transport or disk failures
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s/%s: status %d", e.Lang, e.Set, e.Status)
	}
	return fmt.Sprintf("fetch %s/%s: %v", e.Lang, e.Set, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{apperr.ErrUnavailable, e.Err} }

// LoadError means the base-language content could not be loaded. It is the
// only failure the viewer surfaces to the learner.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("content: %s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{apperr.ErrUnavailable, e.Err} }
