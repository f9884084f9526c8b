package viewstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/catalog"
	"github.com/starford/coursebook/internal/content"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/progress"
	"github.com/starford/coursebook/internal/state"
)

// Failure notification shown when base content cannot be loaded.
const (
	MsgLoadFailed = "Failed to load course data. Please refresh the page."
	KindFailure   = "error"
)

const (
	defaultFetchTimeout = 30 * time.Second
	persistTimeout      = 5 * time.Second
)

// Subscriber observes every state change. Subscribers run in registration
// order after the change is committed and must not call back into the
// controller's transitions.
type Subscriber func(prev, next State)

// Options configures a Controller.
type Options struct {
	Store        *content.Store
	KV           state.KV // nil disables persistence
	Notifier     progress.Notifier
	StrictIDs    bool
	FetchTimeout time.Duration // bound for background prefetches
	Logger       *slog.Logger
}

// Controller owns the current State and turns it into CourseViews.
type Controller struct {
	store        *content.Store
	kv           state.KV
	notifier     progress.Notifier
	strict       bool
	fetchTimeout time.Duration
	logger       *slog.Logger

	flights singleflight.Group

	// dispatch serializes transitions so subscribers see changes in order.
	dispatch sync.Mutex

	mu      sync.RWMutex
	state   State
	catalog *catalog.Catalog
	subs    []Subscriber
}

// New creates a controller. Call Init before serving views.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	n := opts.Notifier
	if n == nil {
		n = progress.NotifierFunc(func(string, string) {})
	}
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	c := &Controller{
		store:        opts.Store,
		kv:           opts.KV,
		notifier:     n,
		strict:       opts.StrictIDs,
		fetchTimeout: timeout,
		logger:       logger,
		state:        State{Language: opts.Store.BaseLanguage(), DarkMode: true},
		catalog:      catalog.Empty(),
	}
	if c.kv != nil {
		c.Subscribe(c.persist)
	}
	return c
}

// Subscribe registers fn for every subsequent state change.
func (c *Controller) Subscribe(fn Subscriber) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Init restores persisted state, loads the catalog, selects the initial
// course and starts fetching it in the background. A content failure is
// reported to the learner and is not returned; only a strict id collision
// is fatal.
func (c *Controller) Init(ctx context.Context) error {
	p := state.Defaults()
	if c.kv != nil {
		var err error
		if p, err = state.Load(ctx, c.kv, c.logger); err != nil {
			c.logger.Warn("viewstate: persisted state partially unreadable", slog.String("error", err.Error()))
		}
	}
	lang := p.Language
	if !c.store.Supports(lang) {
		lang = c.store.BaseLanguage()
	}

	c.dispatch.Lock()
	c.mu.Lock()
	c.state = fromPersisted(p, lang)
	c.mu.Unlock()
	c.dispatch.Unlock()

	return c.Refresh(ctx)
}

// Refresh reloads course metadata and re-applies the selection rule. The
// current course is kept while it is still listed.
func (c *Controller) Refresh(ctx context.Context) error {
	metas, err := c.store.Metadata(ctx)
	if err != nil {
		var loadErr *content.LoadError
		if !errors.As(err, &loadErr) {
			return err
		}
		c.reportLoadError(err)
	}
	cat, err := catalog.New(metas, c.strict, c.logger)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.catalog = cat
	current := c.state.CourseID
	c.mu.Unlock()

	id, ok := cat.Select(current)
	switch {
	case !ok:
		c.logger.Info("viewstate: no courses available")
		if current != "" {
			c.apply(func(s State) State { return s.WithCourse("") })
		}
		return nil
	case id != current:
		c.apply(func(s State) State { return s.WithCourse(id) })
	}
	c.logger.Info("viewstate: course selected",
		slog.String("course_id", id),
		slog.Int("courses", cat.Len()))
	c.prefetch(ctx, id)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Courses returns the catalog in display order.
func (c *Controller) Courses() []models.CourseMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog.List()
}

func (c *Controller) listed(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog.Contains(id)
}

// Languages returns the supported display languages, base first.
func (c *Controller) Languages() []models.Language { return c.store.Languages() }

// SelectCourse makes id the active course and clears the query.
func (c *Controller) SelectCourse(ctx context.Context, id string) (State, error) {
	if !c.listed(id) {
		return State{}, fmt.Errorf("viewstate: course %q: %w", id, apperr.ErrNotFound)
	}
	next := c.apply(func(s State) State { return s.WithCourse(id) })
	c.prefetch(ctx, id)
	return next, nil
}

// SetLanguage switches the global display language.
func (c *Controller) SetLanguage(lang models.Language) (State, error) {
	if !c.store.Supports(lang) {
		return State{}, fmt.Errorf("viewstate: language %q: %w", lang, apperr.ErrInvalidInput)
	}
	return c.apply(func(s State) State { return s.WithLanguage(lang) }), nil
}

// SetQuery updates the search query.
func (c *Controller) SetQuery(q string) State {
	q = strings.TrimSpace(q)
	return c.apply(func(s State) State { return s.WithQuery(q) })
}

// SetDarkMode updates the theme flag.
func (c *Controller) SetDarkMode(on bool) State {
	return c.apply(func(s State) State { return s.WithDarkMode(on) })
}

// SetTopicLanguage overrides the display language of one topic.
func (c *Controller) SetTopicLanguage(topicID string, lang models.Language) (State, error) {
	if topicID == "" {
		return State{}, fmt.Errorf("viewstate: empty topic id: %w", apperr.ErrInvalidInput)
	}
	if !c.store.Supports(lang) {
		return State{}, fmt.Errorf("viewstate: language %q: %w", lang, apperr.ErrInvalidInput)
	}
	return c.apply(func(s State) State { return s.WithTopicLanguage(topicID, lang) }), nil
}

// ToggleBookmark flips the bookmark on topicID and acknowledges it.
func (c *Controller) ToggleBookmark(topicID string) (added bool, err error) {
	if topicID == "" {
		return false, fmt.Errorf("viewstate: empty topic id: %w", apperr.ErrInvalidInput)
	}
	c.apply(func(s State) State {
		var tr progress.Tracker
		tr, added = s.Tracker().ToggleBookmark(topicID)
		return s.WithBookmarks(tr.Bookmarks())
	})
	progress.AcknowledgeBookmark(c.notifier, added)
	return added, nil
}

// ToggleComplete flips completion of topicID. Only completing a topic is
// acknowledged.
func (c *Controller) ToggleComplete(topicID string) (completed bool, err error) {
	if topicID == "" {
		return false, fmt.Errorf("viewstate: empty topic id: %w", apperr.ErrInvalidInput)
	}
	c.apply(func(s State) State {
		var tr progress.Tracker
		tr, completed = s.Tracker().ToggleComplete(topicID)
		return s.WithCompleted(tr.Completed())
	})
	progress.AcknowledgeComplete(c.notifier, completed)
	return completed, nil
}

// View renders the active course. With wait false a cold cache yields a
// loading view and the fetch continues in the background; with wait true
// the call blocks until content is available or has failed.
func (c *Controller) View(ctx context.Context, wait bool) (CourseView, error) {
	s := c.Snapshot()
	if s.CourseID == "" {
		return statusView(s, StatusEmpty), nil
	}
	if !wait && !c.cached(s.CourseID, s.Language) {
		c.prefetch(ctx, s.CourseID)
		if base, _ := c.store.Status(s.CourseID); base == content.SlotFailed {
			return statusView(s, StatusUnavailable), nil
		}
		return statusView(s, StatusLoading), nil
	}
	return c.render(ctx, s)
}

// ViewOf renders courseID in lang with query, using the current progress
// but without touching the active selection.
func (c *Controller) ViewOf(ctx context.Context, courseID string, lang models.Language, query string) (CourseView, error) {
	s := c.Snapshot()
	if lang == "" {
		lang = s.Language
	}
	if !c.store.Supports(lang) {
		return CourseView{}, fmt.Errorf("viewstate: language %q: %w", lang, apperr.ErrInvalidInput)
	}
	if !c.listed(courseID) {
		return CourseView{}, fmt.Errorf("viewstate: course %q: %w", courseID, apperr.ErrNotFound)
	}
	s.CourseID = courseID
	s.Language = lang
	s.Query = strings.TrimSpace(query)
	s.TopicLanguage = nil
	return c.render(ctx, s)
}

// Progress returns completion statistics for the active course.
func (c *Controller) Progress(ctx context.Context) (progress.Stats, error) {
	s := c.Snapshot()
	if s.CourseID == "" {
		return progress.Stats{}, nil
	}
	b, err := c.fetch(ctx, s.CourseID)
	if err != nil {
		return progress.Stats{}, err
	}
	return s.Tracker().CourseStats(b.Base), nil
}

func (c *Controller) render(ctx context.Context, s State) (CourseView, error) {
	b, err := c.fetch(ctx, s.CourseID)
	if err != nil {
		var loadErr *content.LoadError
		if errors.As(err, &loadErr) {
			return statusView(s, StatusUnavailable), nil
		}
		return CourseView{}, err
	}
	return assemble(b, s, c.store.BaseLanguage()), nil
}

func (c *Controller) cached(courseID string, lang models.Language) bool {
	base, overlay := c.store.Status(courseID)
	if base != content.SlotReady {
		return false
	}
	return lang == c.store.BaseLanguage() || overlay == content.SlotReady || overlay == content.SlotMissing
}

// fetch loads a course bundle. Callers for the same id share one attempt so
// a failure is reported once. The attempt runs detached from ctx and bounded
// by the fetch timeout, so a caller going away neither aborts it for the
// others nor counts as a load failure. The bundle always carries both
// languages.
func (c *Controller) fetch(ctx context.Context, courseID string) (content.Bundle, error) {
	ch := c.flights.DoChan(courseID, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		b, err := c.store.Course(fctx, courseID, c.store.OverlayLanguage())
		if err != nil {
			c.reportLoadError(err)
		}
		return b, err
	})
	select {
	case <-ctx.Done():
		return content.Bundle{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return content.Bundle{}, res.Err
		}
		return res.Val.(content.Bundle), nil
	}
}

// prefetch warms the cache for courseID without blocking.
func (c *Controller) prefetch(ctx context.Context, courseID string) {
	if c.cached(courseID, c.store.OverlayLanguage()) {
		return
	}
	go func() {
		_, _ = c.fetch(context.WithoutCancel(ctx), courseID)
	}()
}

func (c *Controller) reportLoadError(err error) {
	var loadErr *content.LoadError
	if !errors.As(err, &loadErr) {
		return
	}
	c.logger.Warn("viewstate: content unavailable", slog.String("error", err.Error()))
	c.notifier.Notify(KindFailure, MsgLoadFailed)
}

// apply commits fn's result and notifies subscribers with copies.
func (c *Controller) apply(fn func(State) State) State {
	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	prev := c.state
	next := fn(prev.clone())
	c.state = next
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	for _, sub := range subs {
		sub(prev.clone(), next.clone())
	}
	return next.clone()
}

func (c *Controller) persist(prev, next State) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := state.Save(ctx, c.kv, prev.persisted(), next.persisted()); err != nil {
		c.logger.Error("viewstate: persist state", slog.String("error", err.Error()))
	}
}
