// Package testutil provides shared test helpers: an in-memory content source,
// sample courses, and a temporary state database.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/state"
)

// ErrFetchFailed is returned by FakeSource for keys marked as failing.
var ErrFetchFailed = errors.New("fake fetch failed")

// FakeSource is an in-memory content.Source that counts requests.
type FakeSource struct {
	mu     sync.Mutex
	files  map[string][]byte
	fail   map[string]error
	calls  map[string]int
	total  int
	onCall func(lang models.Language, set string)
}

// NewFakeSource creates an empty FakeSource.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		files: make(map[string][]byte),
		fail:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func key(lang models.Language, set string) string { return string(lang) + "/" + set }

// Put stores the JSON encoding of v as the bundle for lang/set.
func (f *FakeSource) Put(t testing.TB, lang models.Language, set string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	f.PutRaw(lang, set, data)
}

// PutRaw stores raw bytes as the bundle for lang/set.
func (f *FakeSource) PutRaw(lang models.Language, set string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key(lang, set)] = data
}

// Fail makes every request for lang/set return err (ErrFetchFailed if nil).
func (f *FakeSource) Fail(lang models.Language, set string, err error) {
	if err == nil {
		err = ErrFetchFailed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[key(lang, set)] = err
}

// Heal clears a failure set with Fail.
func (f *FakeSource) Heal(lang models.Language, set string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.fail, key(lang, set))
}

// OnCall registers a hook run at the start of every Fetch.
func (f *FakeSource) OnCall(fn func(lang models.Language, set string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onCall = fn
}

// Calls returns how many times lang/set was requested.
func (f *FakeSource) Calls(lang models.Language, set string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key(lang, set)]
}

// Total returns the number of requests across all keys.
func (f *FakeSource) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// Fetch implements content.Source.
func (f *FakeSource) Fetch(ctx context.Context, lang models.Language, set string) ([]byte, error) {
	f.mu.Lock()
	k := key(lang, set)
	f.calls[k]++
	f.total++
	hook := f.onCall
	failErr := f.fail[k]
	data, ok := f.files[k]
	f.mu.Unlock()

	if hook != nil {
		hook(lang, set)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failErr != nil {
		return nil, failErr
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", k, apperr.ErrNotFound)
	}
	return data, nil
}

// TestState opens a temporary SQLite state store that is closed on cleanup.
func TestState(t *testing.T) *state.SQLite {
	t.Helper()
	f, err := os.CreateTemp("", "coursebook-state-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	st, err := state.OpenSQLite(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
