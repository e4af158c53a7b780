// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about bundle rebuilds, cache behavior, and
// operation lifecycle transitions.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (Prometheus, OpenTelemetry, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(prom.NewStoreHooks())
//	    observability.SetOpsHooks(prom.NewOpsHooks())
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the manifest store.
type StoreHooks interface {
	// OnCacheHit records a bundle served from cache.
	OnCacheHit(ctx context.Context, repo string)

	// OnCacheMiss records a bundle request that found no cache entry.
	OnCacheMiss(ctx context.Context, repo string)

	// OnFetchStart records the start of an upstream manifest fetch.
	OnFetchStart(ctx context.Context, repo string)

	// OnFetchComplete records a finished fetch, successful or not.
	OnFetchComplete(ctx context.Context, repo string, duration time.Duration, err error)
}

// =============================================================================
// Operation Hooks
// =============================================================================

// OpsHooks receives events from the operation registry.
type OpsHooks interface {
	// OnCreate records a newly created operation.
	OnCreate(ctx context.Context, opType string)

	// OnTransition records a status transition.
	OnTransition(ctx context.Context, opType, from, to string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnCacheHit(context.Context, string)                            {}
func (NoopStoreHooks) OnCacheMiss(context.Context, string)                           {}
func (NoopStoreHooks) OnFetchStart(context.Context, string)                          {}
func (NoopStoreHooks) OnFetchComplete(context.Context, string, time.Duration, error) {}

// NoopOpsHooks is a no-op implementation of OpsHooks.
type NoopOpsHooks struct{}

func (NoopOpsHooks) OnCreate(context.Context, string)                     {}
func (NoopOpsHooks) OnTransition(context.Context, string, string, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks StoreHooks = NoopStoreHooks{}
	opsHooks   OpsHooks   = NoopOpsHooks{}
	hooksMu    sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetOpsHooks registers custom operation hooks.
// This should be called once at application startup before any registry operations.
func SetOpsHooks(h OpsHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		opsHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Ops returns the registered operation hooks.
func Ops() OpsHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return opsHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	opsHooks = NoopOpsHooks{}
}
