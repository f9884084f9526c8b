package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
)

// maxBundleSize caps a single bundle download.
const maxBundleSize = 32 << 20

// ErrBundleTooLarge is returned for a bundle body above the size cap.
var ErrBundleTooLarge = errors.New("bundle too large")

// HTTPSource fetches bundles from <base>/<language>/<set>.
type HTTPSource struct {
	base    string
	client  *http.Client
	maxSize int64
}

// NewHTTPSource creates a source rooted at baseURL. A zero timeout leaves
// requests bounded only by the caller's context.
func NewHTTPSource(baseURL string, timeout time.Duration) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("content: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("content: unsupported base url scheme %q", u.Scheme)
	}
	return &HTTPSource{
		base:    strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		maxSize: maxBundleSize,
	}, nil
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, lang models.Language, set string) ([]byte, error) {
	target := s.base + "/" + url.PathEscape(string(lang)) + "/" + url.PathEscape(set)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Lang: lang, Set: set, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Lang: lang, Set: set, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		cause := errors.New(http.StatusText(resp.StatusCode))
		if resp.StatusCode == http.StatusNotFound {
			cause = apperr.ErrNotFound
		}
		return nil, &FetchError{Lang: lang, Set: set, Status: resp.StatusCode, Err: cause}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, &FetchError{Lang: lang, Set: set, Err: err}
	}
	if int64(len(data)) > s.maxSize {
		return nil, &FetchError{Lang: lang, Set: set, Err: fmt.Errorf("%w: over %d bytes", ErrBundleTooLarge, s.maxSize)}
	}
	return data, nil
}
