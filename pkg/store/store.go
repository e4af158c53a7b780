// Package store orchestrates the manifest pipeline and caches its output.
//
// Store.Get runs fetch -> parse -> build graph -> build hierarchy and caches
// the bundled result per repository key with indefinite TTL. A cached entry
// is served without network access unless the caller requests a refresh.
// Concurrent fetch-triggering calls for the same key collapse into a single
// upstream fetch (single-flight); every waiter receives the same bundle or
// the same failure.
//
// Failure policy is fail-closed: a failed fetch or parse surfaces an error
// and leaves any existing cache entry untouched. The store never substitutes
// stale data on its own; a caller wanting last-known-good semantics must
// track that bundle itself.
package store

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/packhub/packhub/pkg/cache"
	"github.com/packhub/packhub/pkg/errors"
	"github.com/packhub/packhub/pkg/fetch"
	"github.com/packhub/packhub/pkg/graph"
	"github.com/packhub/packhub/pkg/hierarchy"
	"github.com/packhub/packhub/pkg/manifest"
	"github.com/packhub/packhub/pkg/observability"
)

// timestampLayout is the fixed-width sortable form used in bundle metadata.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Store caches manifest bundles per repository key.
// Safe for concurrent use.
type Store struct {
	cache   cache.Cache
	keyer   cache.Keyer
	fetcher fetch.Fetcher
	clock   func() time.Time
	logger  *log.Logger

	mu       sync.Mutex
	inflight map[string]*call
}

// call is one in-flight fetch generation. Waiters block on done and then
// read bundle/err, which are written exactly once before done is closed.
type call struct {
	done   chan struct{}
	bundle *Bundle
	err    error
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects a clock for deterministic timestamps in tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger sets the store's logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithKeyer overrides the cache key derivation.
func WithKeyer(keyer cache.Keyer) Option {
	return func(s *Store) { s.keyer = keyer }
}

// New creates a Store with the given cache backend and fetcher.
func New(c cache.Cache, fetcher fetch.Fetcher, opts ...Option) *Store {
	s := &Store{
		cache:    c,
		keyer:    cache.NewDefaultKeyer(),
		fetcher:  fetcher,
		clock:    time.Now,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		inflight: make(map[string]*call),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the bundle for repoKey.
//
// With refresh false and a cached entry present, the entry is served
// directly with no fetcher call. Otherwise the fetcher is consulted and the
// pipeline re-run; on success the new bundle replaces any prior entry for
// the key. Errors carry the FETCH_ERROR or PARSE_ERROR code.
func (s *Store) Get(ctx context.Context, repoKey string, refresh bool) (*Bundle, error) {
	if err := errors.ValidateRepoKey(repoKey); err != nil {
		return nil, err
	}
	key := s.keyer.BundleKey(repoKey, "")

	if !refresh {
		if bundle, ok := s.cached(ctx, key); ok {
			observability.Store().OnCacheHit(ctx, repoKey)
			return bundle, nil
		}
		observability.Store().OnCacheMiss(ctx, repoKey)
	}

	return s.fetchOnce(ctx, key, repoKey, refresh)
}

// Invalidate drops the cached entry for repoKey, if any.
func (s *Store) Invalidate(ctx context.Context, repoKey string) error {
	return s.cache.Delete(ctx, s.keyer.BundleKey(repoKey, ""))
}

// cached loads and decodes the cache entry for key.
// A corrupt entry is treated as a miss.
func (s *Store) cached(ctx context.Context, key string) (*Bundle, bool) {
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil || !hit {
		if err != nil {
			s.logger.Warn("cache read failed", "err", err)
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Bundle == nil {
		s.logger.Warn("discarding corrupt cache entry", "err", err)
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}

	// Cached bundles are returned exactly as stored: repeated reads of one
	// fetch generation must be bit-identical.
	return entry.Bundle, true
}

// fetchOnce collapses concurrent fetches for the same key into one upstream
// request. The first caller becomes the leader and runs the pipeline; later
// callers wait and share the leader's result.
func (s *Store) fetchOnce(ctx context.Context, key, repoKey string, refresh bool) (*Bundle, error) {
	s.mu.Lock()
	if c, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.bundle, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c := &call{done: make(chan struct{})}
	s.inflight[key] = c
	s.mu.Unlock()

	c.bundle, c.err = s.rebuild(ctx, key, repoKey, refresh)

	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
	close(c.done)

	return c.bundle, c.err
}

// rebuild runs the full pipeline for one fetch generation and replaces the
// cache entry on success. Any failure leaves the existing entry untouched.
func (s *Store) rebuild(ctx context.Context, key, repoKey string, refresh bool) (*Bundle, error) {
	start := s.clock()
	observability.Store().OnFetchStart(ctx, repoKey)

	res, err := s.fetcher.Fetch(ctx, repoKey)
	if err != nil {
		observability.Store().OnFetchComplete(ctx, repoKey, s.clock().Sub(start), err)
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "fetch manifest for %s", repoKey)
	}
	if !res.OK {
		err := errors.New(errors.ErrCodeFetch, "fetch manifest for %s: upstream status %d", repoKey, res.StatusCode)
		observability.Store().OnFetchComplete(ctx, repoKey, s.clock().Sub(start), err)
		return nil, err
	}
	observability.Store().OnFetchComplete(ctx, repoKey, s.clock().Sub(start), nil)

	m, err := manifest.Parse(res.Body)
	if err != nil {
		// Stale-but-valid data is not evicted by a failed refresh.
		return nil, errors.Wrap(errors.ErrCodeParse, err, "manifest for %s is invalid", repoKey)
	}

	now := s.clock().UTC()
	bundle := &Bundle{
		Manifest:  m,
		Hierarchy: hierarchy.Build(m.Packs),
		Graph:     graph.Build(m.Packs),
		Meta: Meta{
			SchemaVersion: m.SchemaVersion,
			Timestamp:     now.Format(timestampLayout),
			Repo:          repoKey,
			Refreshed:     refresh,
		},
	}

	entry := Entry{
		Bundle:      bundle,
		ContentHash: res.ContentID,
		FetchedAt:   now.Format(timestampLayout),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode bundle for %s", repoKey)
	}

	// Indefinite TTL: entries are replaced by refresh, never expired.
	if err := s.cache.Set(ctx, key, data, 0); err != nil {
		// A cache write failure degrades to uncached operation; the bundle
		// itself is still good.
		s.logger.Warn("cache write failed", "repo", repoKey, "err", err)
	}

	s.logger.Info("rebuilt manifest bundle",
		"repo", repoKey,
		"packs", len(m.Packs),
		"pages", len(m.Pages),
		"hasCycle", bundle.Graph.HasCycle,
	)
	return bundle, nil
}
