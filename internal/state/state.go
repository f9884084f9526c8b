// Package state persists the learner's local settings in a key-value store.
// Values are JSON-encoded, one key per setting.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/starford/coursebook/internal/models"
)

// Keys of the persisted settings.
const (
	KeyDarkMode        = "darkMode"
	KeyBookmarks       = "bookmarks"
	KeyCompletedTopics = "completedTopics"
	KeyActiveCourseID  = "activeCourseId"
	KeyLanguage        = "language"
)

// KV is the key-value collaborator. A missing key reports ok == false.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Persisted is the full set of locally stored settings.
type Persisted struct {
	DarkMode       bool
	Bookmarks      []string
	Completed      []string
	ActiveCourseID string
	Language       models.Language
}

// Defaults returns the settings used when nothing is stored.
func Defaults() Persisted {
	return Persisted{DarkMode: true}
}

// Load reads every setting. A missing or unparseable value keeps its
// default. Backend errors are joined and returned alongside whatever could
// be read; they are never fatal to the caller.
func Load(ctx context.Context, kv KV, logger *slog.Logger) (Persisted, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := reader{ctx: ctx, kv: kv, logger: logger}
	p := Defaults()

	if v, ok := get[bool](&r, KeyDarkMode); ok {
		p.DarkMode = v
	}
	p.Bookmarks, _ = get[[]string](&r, KeyBookmarks)
	p.Completed, _ = get[[]string](&r, KeyCompletedTopics)
	p.ActiveCourseID, _ = get[string](&r, KeyActiveCourseID)
	if v, ok := get[string](&r, KeyLanguage); ok {
		p.Language = models.Language(v)
	}
	return p, errors.Join(r.errs...)
}

type reader struct {
	ctx    context.Context
	kv     KV
	logger *slog.Logger
	errs   []error
}

// get decodes one key into a fresh T so a half-decoded value never leaks.
func get[T any](r *reader, key string) (T, bool) {
	var zero T
	raw, ok, err := r.kv.Get(r.ctx, key)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("state: get %s: %w", key, err))
		return zero, false
	}
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		r.logger.Warn("state: ignoring malformed value",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return zero, false
	}
	return v, true
}

// Save writes the settings that differ between prev and next. An empty
// active course id is never written, so a transient "nothing selected"
// does not erase the learner's last choice.
func Save(ctx context.Context, kv KV, prev, next Persisted) error {
	var errs []error
	write := func(key string, v any) {
		raw, err := json.Marshal(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("state: encode %s: %w", key, err))
			return
		}
		if err := kv.Set(ctx, key, raw); err != nil {
			errs = append(errs, fmt.Errorf("state: set %s: %w", key, err))
		}
	}

	if prev.DarkMode != next.DarkMode {
		write(KeyDarkMode, next.DarkMode)
	}
	if !slices.Equal(prev.Bookmarks, next.Bookmarks) {
		write(KeyBookmarks, nonNil(next.Bookmarks))
	}
	if !slices.Equal(prev.Completed, next.Completed) {
		write(KeyCompletedTopics, nonNil(next.Completed))
	}
	if next.ActiveCourseID != "" && prev.ActiveCourseID != next.ActiveCourseID {
		write(KeyActiveCourseID, next.ActiveCourseID)
	}
	if next.Language != "" && prev.Language != next.Language {
		write(KeyLanguage, string(next.Language))
	}
	return errors.Join(errs...)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
