package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/parser"
)

// SlotState describes one language slot of a cache entry.
type SlotState int

// Slot states.
const (
	SlotEmpty   SlotState = iota // never fetched
	SlotReady                    // course present
	SlotMissing                  // fetch settled without a course (overlay only)
	SlotFailed                   // fetch failed; the next request retries
)

func (s SlotState) String() string {
	switch s {
	case SlotReady:
		return "ready"
	case SlotMissing:
		return "missing"
	case SlotFailed:
		return "failed"
	default:
		return "empty"
	}
}

// settled reports whether the slot needs no further fetch.
func (s SlotState) settled() bool {
	return s == SlotReady || s == SlotMissing
}

// Bundle is the raw base/overlay pair for one course id.
type Bundle struct {
	Base    *models.Course
	Overlay *models.Course // nil when no translation is available
}

type entry struct {
	base    SlotState
	overlay SlotState
	bundle  Bundle
	err     error
}

// Options configures a Store.
type Options struct {
	Sets            []string
	BaseLanguage    models.Language
	OverlayLanguage models.Language
	Logger          *slog.Logger
}

// Store resolves raw course data with memoization. Cache entries are keyed
// by the course id a fetch was issued for and replaced as whole values.
// Entries are never evicted.
type Store struct {
	src         Source
	sets        []string
	baseLang    models.Language
	overlayLang models.Language
	logger      *slog.Logger

	group singleflight.Group

	mu       sync.Mutex
	cache    map[string]entry
	metadata []models.CourseMetadata
}

// NewStore creates a Store over src.
func NewStore(src Source, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := opts.BaseLanguage
	if base == "" {
		base = models.English
	}
	overlay := opts.OverlayLanguage
	if overlay == "" {
		overlay = models.Hinglish
	}
	sets := make([]string, len(opts.Sets))
	copy(sets, opts.Sets)
	return &Store{
		src:         src,
		sets:        sets,
		baseLang:    base,
		overlayLang: overlay,
		logger:      logger,
		cache:       make(map[string]entry),
	}
}

// BaseLanguage returns the structural language.
func (s *Store) BaseLanguage() models.Language { return s.baseLang }

// OverlayLanguage returns the translation language.
func (s *Store) OverlayLanguage() models.Language { return s.overlayLang }

// Languages returns the base and overlay languages in that order.
func (s *Store) Languages() []models.Language {
	return []models.Language{s.baseLang, s.overlayLang}
}

// Supports reports whether lang is one of the store's languages.
func (s *Store) Supports(lang models.Language) bool {
	return lang == s.baseLang || lang == s.overlayLang
}

// Metadata fetches every course set in the base language and returns the
// flattened course list in configured set order. On failure it returns the
// last successfully computed list together with a *LoadError, or with the
// context error when ctx was cancelled.
func (s *Store) Metadata(ctx context.Context) ([]models.CourseMetadata, error) {
	sets, err := s.fetchBase(ctx)
	if err != nil {
		s.mu.Lock()
		last := cloneMetadata(s.metadata)
		s.mu.Unlock()
		if callerGone(ctx) {
			return last, fmt.Errorf("content: load metadata: %w", ctx.Err())
		}
		return last, &LoadError{Op: "load metadata", Err: err}
	}

	var out []models.CourseMetadata
	for _, courses := range sets {
		for i := range courses {
			out = append(out, courses[i].Metadata())
		}
	}

	s.mu.Lock()
	s.metadata = out
	s.mu.Unlock()

	s.logger.Debug("content: metadata loaded", slog.Int("courses", len(out)))
	return cloneMetadata(out), nil
}

// Course returns the base/overlay bundle for courseID. The cache answers
// whenever the slot lang needs is settled; otherwise every course set is
// fetched in both languages. Concurrent callers for the same id share one
// fetch.
func (s *Store) Course(ctx context.Context, courseID string, lang models.Language) (Bundle, error) {
	if b, ok := s.cached(courseID, lang); ok {
		return b, nil
	}
	v, err, _ := s.group.Do(courseID, func() (any, error) {
		// A fetch for this id may have completed between the cache check
		// and joining the flight.
		if b, ok := s.cached(courseID, lang); ok {
			return b, nil
		}
		return s.load(ctx, courseID)
	})
	if err != nil {
		return Bundle{}, err
	}
	return v.(Bundle), nil
}

// Status returns the slot states for courseID without fetching.
func (s *Store) Status(courseID string) (base, overlay SlotState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.cache[courseID]
	return e.base, e.overlay
}

func (s *Store) cached(courseID string, lang models.Language) (Bundle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[courseID]
	if !ok || e.base != SlotReady {
		return Bundle{}, false
	}
	if lang != s.baseLang && !e.overlay.settled() {
		return Bundle{}, false
	}
	return e.bundle, true
}

func (s *Store) load(ctx context.Context, courseID string) (Bundle, error) {
	var (
		overlaySets [][]models.Course
		wg          sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		overlaySets = s.fetchOverlay(ctx)
	}()

	baseSets, baseErr := s.fetchBase(ctx)
	wg.Wait()

	if baseErr != nil {
		if callerGone(ctx) {
			return Bundle{}, fmt.Errorf("content: load course %s: %w", courseID, ctx.Err())
		}
		s.put(courseID, entry{base: SlotFailed, overlay: SlotEmpty, err: baseErr})
		return Bundle{}, &LoadError{Op: "load course " + courseID, Err: baseErr}
	}

	base, setIdx := findIn(baseSets, courseID, -1)
	if base == nil {
		return Bundle{}, fmt.Errorf("content: course %q: %w", courseID, apperr.ErrNotFound)
	}

	e := entry{base: SlotReady, overlay: SlotMissing, bundle: Bundle{Base: base}}
	if overlay, _ := findIn(overlaySets, courseID, setIdx); overlay != nil {
		e.overlay = SlotReady
		e.bundle.Overlay = overlay
	} else if callerGone(ctx) {
		// Overlay requests may have been cut short; fetch again next time.
		e.overlay = SlotEmpty
	} else {
		s.logger.Debug("content: no overlay for course",
			slog.String("course_id", courseID),
			slog.String("language", string(s.overlayLang)))
	}
	s.put(courseID, e)

	s.logger.Info("content: course loaded",
		slog.String("course_id", courseID),
		slog.Bool("overlay", e.bundle.Overlay != nil))
	return e.bundle, nil
}

// callerGone reports whether ctx was cancelled by its owner. Such failures
// say nothing about the content and are neither cached nor reported.
func callerGone(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func (s *Store) put(courseID string, e entry) {
	s.mu.Lock()
	s.cache[courseID] = e
	s.mu.Unlock()
}

// fetchBase fetches and validates every set in the base language. The first
// failure cancels the remaining requests.
func (s *Store) fetchBase(ctx context.Context) ([][]models.Course, error) {
	out := make([][]models.Course, len(s.sets))
	g, gCtx := errgroup.WithContext(ctx)
	for i, set := range s.sets {
		g.Go(func() error {
			data, err := s.src.Fetch(gCtx, s.baseLang, set)
			if err != nil {
				return err
			}
			courses, err := parser.ParseStrict(data)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", s.baseLang, set, err)
			}
			out[i] = courses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchOverlay fetches every set in the overlay language and waits for all
// of them to settle. A failed or malformed set yields nil at its index.
func (s *Store) fetchOverlay(ctx context.Context) [][]models.Course {
	out := make([][]models.Course, len(s.sets))
	var wg sync.WaitGroup
	for i, set := range s.sets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := s.src.Fetch(ctx, s.overlayLang, set)
			if err == nil {
				out[i], err = parser.Parse(data)
			}
			if err != nil {
				level := slog.LevelWarn
				if errors.Is(err, apperr.ErrNotFound) {
					level = slog.LevelDebug
				}
				s.logger.Log(ctx, level, "content: overlay set unavailable",
					slog.String("set", set),
					slog.String("language", string(s.overlayLang)),
					slog.String("error", err.Error()))
			}
		}()
	}
	wg.Wait()
	return out
}

// findIn looks for id in sets, checking the preferred set index first.
// It returns the course and the index of the set it came from.
func findIn(sets [][]models.Course, id string, preferred int) (*models.Course, int) {
	if preferred >= 0 && preferred < len(sets) {
		if c, ok := parser.Find(sets[preferred], id); ok {
			return c, preferred
		}
	}
	for i, courses := range sets {
		if i == preferred {
			continue
		}
		if c, ok := parser.Find(courses, id); ok {
			return c, i
		}
	}
	return nil, -1
}

func cloneMetadata(in []models.CourseMetadata) []models.CourseMetadata {
	if in == nil {
		return nil
	}
	out := make([]models.CourseMetadata, len(in))
	copy(out, in)
	return out
}
