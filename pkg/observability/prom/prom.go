// Package prom implements the observability hook interfaces with Prometheus
// metrics. Register at startup and expose via promhttp:
//
//	observability.SetStoreHooks(prom.NewStoreHooks())
//	observability.SetOpsHooks(prom.NewOpsHooks())
//	router.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreHooks records manifest store metrics.
type StoreHooks struct {
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	fetchesTotal  prometheus.Counter
	fetchFailures prometheus.Counter
	fetchLatency  prometheus.Histogram
}

// NewStoreHooks creates store hooks registered on the default registry.
func NewStoreHooks() *StoreHooks {
	return &StoreHooks{
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "packhub_bundle_cache_hits_total",
			Help: "Bundles served from cache.",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "packhub_bundle_cache_misses_total",
			Help: "Bundle requests that found no cache entry.",
		}),
		fetchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "packhub_manifest_fetches_total",
			Help: "Upstream manifest fetches started.",
		}),
		fetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "packhub_manifest_fetch_failures_total",
			Help: "Upstream manifest fetches that failed.",
		}),
		fetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "packhub_manifest_fetch_seconds",
			Help:    "Upstream manifest fetch latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (h *StoreHooks) OnCacheHit(ctx context.Context, repo string)  { h.cacheHits.Inc() }
func (h *StoreHooks) OnCacheMiss(ctx context.Context, repo string) { h.cacheMisses.Inc() }
func (h *StoreHooks) OnFetchStart(ctx context.Context, repo string) {
	h.fetchesTotal.Inc()
}

func (h *StoreHooks) OnFetchComplete(ctx context.Context, repo string, duration time.Duration, err error) {
	h.fetchLatency.Observe(duration.Seconds())
	if err != nil {
		h.fetchFailures.Inc()
	}
}

// OpsHooks records operation registry metrics.
type OpsHooks struct {
	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewOpsHooks creates operation hooks registered on the default registry.
func NewOpsHooks() *OpsHooks {
	return &OpsHooks{
		created: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "packhub_operations_created_total",
			Help: "Operations created, by type.",
		}, []string{"type"}),
		transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "packhub_operation_transitions_total",
			Help: "Operation status transitions, by type and target status.",
		}, []string{"type", "to"}),
	}
}

func (h *OpsHooks) OnCreate(ctx context.Context, opType string) {
	h.created.WithLabelValues(opType).Inc()
}

func (h *OpsHooks) OnTransition(ctx context.Context, opType, from, to string) {
	h.transitions.WithLabelValues(opType, to).Inc()
}
