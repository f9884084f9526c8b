package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/progress"
)

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestNotifyDeliversToast(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var n progress.Notifier = b
	n.Notify(progress.KindAcknowledgement, progress.MsgCompleted)

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: toast") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"kind":"success"`) || !strings.Contains(s, "Topic marked as complete!") {
			t.Errorf("missing toast payload in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for toast")
	}
}

func TestContentChangeThrottledPerBundle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishContentChange(models.English, "web.json")
	b.PublishContentChange(models.English, "web.json")
	b.PublishContentChange(models.Hinglish, "web.json")

	time.Sleep(50 * time.Millisecond)
	msgs := drain(ch)
	if len(msgs) != 2 {
		t.Fatalf("events = %d, want 2 (one per bundle): %v", len(msgs), msgs)
	}
	if !strings.Contains(msgs[0], "event: content.changed") ||
		!strings.Contains(msgs[0], `"language":"english"`) ||
		!strings.Contains(msgs[0], `"set":"web.json"`) {
		t.Errorf("unexpected first event %q", msgs[0])
	}
	if !strings.Contains(msgs[1], `"language":"hinglish"`) {
		t.Errorf("unexpected second event %q", msgs[1])
	}
}

func TestContentChangeAfterWindow(t *testing.T) {
	b := NewBroker(50 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishContentChange(models.English, "web.json")
	time.Sleep(100 * time.Millisecond)
	b.PublishContentChange(models.English, "web.json")
	time.Sleep(50 * time.Millisecond)

	if got := len(drain(ch)); got != 2 {
		t.Errorf("events = %d, want 2", got)
	}
}

// syncRecorder guards the body so the test can read it while ServeHTTP
// is still writing.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Notify("error", "Failed to load course data. Please refresh the page.")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.body()
	if !strings.Contains(body, "event: toast") || !strings.Contains(body, "Failed to load course data") {
		t.Errorf("handler output missing toast: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for range 70 {
		b.Notify("success", "x")
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Notify("success", "ignored")
	b.PublishContentChange(models.English, "web.json")
}
