// Package fetch defines the collaborator that obtains raw manifest bytes
// for a repository, plus an HTTP implementation.
//
// The store layer treats fetching as external: it hands over a repository
// key and receives raw text plus a content identifier (hash or commit).
// Transient transport failures may be retried inside an implementation;
// the store itself never retries.
package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/packhub/packhub/pkg/cache"
)

// Result is the outcome of a fetch attempt.
type Result struct {
	// OK reports whether the fetch produced a usable manifest body.
	OK bool

	// StatusCode is the upstream HTTP status, when applicable.
	StatusCode int

	// Body is the raw manifest text.
	Body string

	// ContentID identifies this body's content generation - an upstream
	// commit/ref when available, otherwise a hash of the body.
	ContentID string
}

// Fetcher obtains raw manifest bytes for a repository key.
type Fetcher interface {
	Fetch(ctx context.Context, repoKey string) (Result, error)
}

// Func adapts a function to the Fetcher interface. Handy in tests.
type Func func(ctx context.Context, repoKey string) (Result, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, repoKey string) (Result, error) {
	return f(ctx, repoKey)
}

// =============================================================================
// HTTP Fetcher
// =============================================================================

// responseTTL bounds how long a validated upstream response is kept.
// Entries are revalidated on every fetch, so the TTL only caps storage.
const responseTTL = 24 * time.Hour

// HTTPFetcher fetches manifests over HTTP from a URL template.
// The template must contain a single "{repo}" placeholder which is replaced
// by the repository key.
type HTTPFetcher struct {
	urlTemplate string
	client      *http.Client
	respCache   cache.Cache
	keyer       cache.Keyer
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithResponseCache stores upstream responses carrying an ETag and
// revalidates them with If-None-Match on later fetches. A 304 answer is
// served from the stored body without re-downloading the manifest. Every
// fetch still reaches upstream, so refresh semantics are unaffected.
func WithResponseCache(c cache.Cache, keyer cache.Keyer) Option {
	return func(f *HTTPFetcher) {
		f.respCache = c
		if keyer == nil {
			keyer = cache.NewDefaultKeyer()
		}
		f.keyer = keyer
	}
}

// NewHTTPFetcher creates an HTTP fetcher for the given URL template.
// A nil client uses a default with a 30 second timeout.
func NewHTTPFetcher(urlTemplate string, client *http.Client, opts ...Option) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	f := &HTTPFetcher{urlTemplate: urlTemplate, client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// storedResponse is one validated upstream response kept for revalidation.
type storedResponse struct {
	ETag string `json:"etag"`
	Body string `json:"body"`
}

// Fetch retrieves the manifest for repoKey.
//
// Server errors (5xx) and transport failures are retried with backoff;
// client errors (4xx) are reported immediately via Result.OK=false. When the
// upstream exposes no content ref, the body's SHA-256 serves as ContentID.
func (f *HTTPFetcher) Fetch(ctx context.Context, repoKey string) (Result, error) {
	url := strings.ReplaceAll(f.urlTemplate, "{repo}", repoKey)

	var respKey string
	var stored storedResponse
	if f.respCache != nil {
		respKey = f.keyer.HTTPKey("manifest", cache.Hash([]byte(url)))
		if sr, err := f.storedResponse(ctx, respKey); err == nil {
			stored = sr
		}
	}

	var res Result
	err := cache.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if stored.ETag != "" {
			req.Header.Set("If-None-Match", `"`+stored.ETag+`"`)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return cache.Retryable(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return cache.Retryable(err)
		}

		res = Result{StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusNotModified && stored.ETag != "" {
			// Upstream confirmed the stored body is still current.
			res.OK = true
			res.Body = stored.Body
			res.ContentID = stored.ETag
			return nil
		}
		if resp.StatusCode >= 500 {
			return cache.Retryable(cache.ErrNetwork)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 || len(body) == 0 {
			// Non-success outcome the caller must surface; not retryable.
			return nil
		}

		res.OK = true
		res.Body = string(body)
		res.ContentID = contentID(resp, body)
		if f.respCache != nil {
			if etag := strings.Trim(resp.Header.Get("ETag"), `"`); etag != "" {
				f.storeResponse(ctx, respKey, storedResponse{ETag: etag, Body: res.Body})
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// storedResponse loads the revalidation entry for key. Absent or corrupt
// entries report cache.ErrCacheMiss.
func (f *HTTPFetcher) storedResponse(ctx context.Context, key string) (storedResponse, error) {
	data, hit, err := f.respCache.Get(ctx, key)
	if err != nil || !hit {
		return storedResponse{}, cache.ErrCacheMiss
	}

	var sr storedResponse
	if err := json.Unmarshal(data, &sr); err != nil || sr.ETag == "" {
		_ = f.respCache.Delete(ctx, key)
		return storedResponse{}, cache.ErrCacheMiss
	}
	return sr, nil
}

// storeResponse records a validated response for later If-None-Match use.
// Storage failures degrade to unconditional fetching.
func (f *HTTPFetcher) storeResponse(ctx context.Context, key string, sr storedResponse) {
	data, err := json.Marshal(sr)
	if err != nil {
		return
	}
	_ = f.respCache.Set(ctx, key, data, responseTTL)
}

// contentID prefers an upstream entity tag over hashing the body.
func contentID(resp *http.Response, body []byte) string {
	if etag := strings.Trim(resp.Header.Get("ETag"), `"`); etag != "" {
		return etag
	}
	return cache.Hash(body)
}

// Ensure HTTPFetcher implements Fetcher.
var _ Fetcher = (*HTTPFetcher)(nil)
