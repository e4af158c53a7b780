// Package pkg provides the core libraries for Packhub manifest processing.
//
// # Overview
//
// Packhub turns declarative content-pack manifests into derived artifacts
// for a UI and caches the bundled result per repository. The pkg directory
// is organized as:
//
//  1. [manifest] - Manifest parsing and normalization
//  2. [graph] - Dependency/containment graph derivation
//  3. [hierarchy] - Display hierarchy derivation
//  4. [store] - Bundle orchestration and caching
//  5. [ops] - Background operation tracking
//  6. [server] - HTTP API
//
// # Architecture
//
// The typical data flow through Packhub:
//
//	Raw manifest text
//	         ↓
//	    [manifest] package (parse + normalize)
//	         ↓
//	    [graph] + [hierarchy] packages (derive artifacts)
//	         ↓
//	    [store] package (bundle + cache, single-flight fetch)
//	         ↓
//	    [server] / CLI output
//
// # Quick Start
//
// Parse a manifest and derive its artifacts:
//
//	m, err := manifest.Parse(raw)
//	if err != nil {
//	    // coded error: EMPTY_INPUT, MALFORMED_SYNTAX, ...
//	}
//	g := graph.Build(m.Packs)
//	h := hierarchy.Build(m.Packs)
//
// Or let a store run the whole pipeline with caching:
//
//	s := store.New(cache.NewMemoryCache(), fetcher)
//	bundle, err := s.Get(ctx, "myorg/content-packs", false)
//
// # Supporting Packages
//
// [cache] - Cache backends (memory, file, redis, null) behind one interface.
//
// [fetch] - Upstream manifest fetching with retry on transient failures.
//
// [errors] - Coded structured errors shared by all layers.
//
// [observability] - Hook interfaces with no-op defaults; [observability/prom]
// implements them with Prometheus metrics.
//
// [ops] - Operation state machine (queued → running → success|failed) with
// memory and [ops/mongo] persistence.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...        # All tests
//	go test ./pkg/manifest   # Specific package
//	go test -run Example     # Examples only
//
// [manifest]: https://pkg.go.dev/github.com/packhub/packhub/pkg/manifest
// [graph]: https://pkg.go.dev/github.com/packhub/packhub/pkg/graph
// [hierarchy]: https://pkg.go.dev/github.com/packhub/packhub/pkg/hierarchy
// [store]: https://pkg.go.dev/github.com/packhub/packhub/pkg/store
// [ops]: https://pkg.go.dev/github.com/packhub/packhub/pkg/ops
// [ops/mongo]: https://pkg.go.dev/github.com/packhub/packhub/pkg/ops/mongo
// [server]: https://pkg.go.dev/github.com/packhub/packhub/pkg/server
// [cache]: https://pkg.go.dev/github.com/packhub/packhub/pkg/cache
// [fetch]: https://pkg.go.dev/github.com/packhub/packhub/pkg/fetch
// [errors]: https://pkg.go.dev/github.com/packhub/packhub/pkg/errors
// [observability]: https://pkg.go.dev/github.com/packhub/packhub/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/packhub/packhub/pkg/observability/prom
package pkg
