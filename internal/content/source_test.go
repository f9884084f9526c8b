package content

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
)

func writeBundle(t *testing.T, root string, lang models.Language, set, body string) {
	t.Helper()
	dir := filepath.Join(root, string(lang))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, set), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirSource_Fetch(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, models.English, "web.json", `{"id":"react"}`)
	src, err := NewDirSource(root)
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}

	data, err := src.Fetch(context.Background(), models.English, "web.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{"id":"react"}` {
		t.Errorf("data = %s", data)
	}
}

func TestDirSource_Missing(t *testing.T) {
	src, err := NewDirSource(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = src.Fetch(context.Background(), models.Hinglish, "web.json")
	if !errors.Is(err, apperr.ErrNotFound) || !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("err = %v, want ErrNotFound and ErrUnavailable", err)
	}
}

func TestDirSource_PathEscape(t *testing.T) {
	src, err := NewDirSource(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Fetch(context.Background(), "..", "../etc/passwd"); err == nil {
		t.Error("expected error for path escaping the root")
	}
}

func TestDirSource_RootMustBeDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	_ = os.WriteFile(f, nil, 0o644)
	if _, err := NewDirSource(f); err == nil {
		t.Error("expected error for a file root")
	}
	if _, err := NewDirSource(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for a missing root")
	}
}

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/english/web.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"react"}]`))
		case "/data/english/broken.json":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL+"/data/", time.Second)
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}
	ctx := context.Background()

	data, err := src.Fetch(ctx, models.English, "web.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `[{"id":"react"}]` {
		t.Errorf("data = %s", data)
	}

	_, err = src.Fetch(ctx, models.Hinglish, "web.json")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 FetchError", err)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Error("404 should match ErrNotFound")
	}

	_, err = src.Fetch(ctx, models.English, "broken.json")
	if !errors.As(err, &fe) || fe.Status != http.StatusInternalServerError {
		t.Fatalf("err = %v, want 500 FetchError", err)
	}
	if errors.Is(err, apperr.ErrNotFound) || !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("500 should be unavailable but not not-found: %v", err)
	}
}

func TestHTTPSource_BundleTooLarge(t *testing.T) {
	body := `[{"id":"react","title":"React Mastery"}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	src.maxSize = int64(len(body))
	if _, err := src.Fetch(ctx, models.English, "web.json"); err != nil {
		t.Fatalf("body at the cap should pass: %v", err)
	}

	src.maxSize = int64(len(body)) - 1
	_, err = src.Fetch(ctx, models.English, "web.json")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FetchError", err)
	}
	if !errors.Is(err, ErrBundleTooLarge) || !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("err = %v, want ErrBundleTooLarge and ErrUnavailable", err)
	}
	if errors.Is(err, apperr.ErrInvalidBundle) {
		t.Error("oversized bundle must not be reported as malformed")
	}
}

func TestHTTPSource_BadScheme(t *testing.T) {
	for _, u := range []string{"ftp://example.com", "example.com/data", "::"} {
		if _, err := NewHTTPSource(u, 0); err == nil {
			t.Errorf("NewHTTPSource(%q) should fail", u)
		}
	}
}

func TestSplitBundlePath(t *testing.T) {
	tests := []struct {
		rel      string
		wantLang models.Language
		wantSet  string
		wantOK   bool
	}{
		{"english/web.json", models.English, "web.json", true},
		{"hinglish/core.json", models.Hinglish, "core.json", true},
		{"web.json", "", "", false},
		{"english/nested/web.json", "", "", false},
	}
	for _, tt := range tests {
		lang, set, ok := splitBundlePath(tt.rel)
		if lang != tt.wantLang || set != tt.wantSet || ok != tt.wantOK {
			t.Errorf("splitBundlePath(%q) = %q, %q, %v", tt.rel, lang, set, ok)
		}
	}
}

func TestWatch_ReportsChangedBundle(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, models.English, "web.json", `[]`)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var changes []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, root, logger, func(lang models.Language, set string) {
			mu.Lock()
			changes = append(changes, string(lang)+"/"+set)
			mu.Unlock()
		})
	}()

	time.Sleep(100 * time.Millisecond)
	writeBundle(t, root, models.English, "web.json", `[{"id":"react"}]`)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(changes)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(changes) == 0 || changes[0] != "english/web.json" {
		t.Errorf("changes = %v, want [english/web.json]", changes)
	}
}
