package store

import (
	"github.com/packhub/packhub/pkg/graph"
	"github.com/packhub/packhub/pkg/hierarchy"
	"github.com/packhub/packhub/pkg/manifest"
)

// Meta describes how and when a bundle was produced.
type Meta struct {
	SchemaVersion string `json:"schemaVersion" bson:"schemaVersion"`
	Timestamp     string `json:"timestamp" bson:"timestamp"`
	Repo          string `json:"repo" bson:"repo"`

	// Refreshed reports whether this bundle generation was produced by an
	// explicit refresh request. It is fixed at build time so that repeated
	// reads of one generation stay bit-identical.
	Refreshed bool `json:"refreshed" bson:"refreshed"`
}

// Bundle is the derived artifact set for one repository's manifest:
// the normalized manifest, its display hierarchy, and its dependency graph.
//
// Bundles are owned by the store. Callers must treat a returned bundle as
// read-only; mutations are never reflected back into the cache.
type Bundle struct {
	Manifest  *manifest.Manifest `json:"manifest" bson:"manifest"`
	Hierarchy *hierarchy.Node    `json:"hierarchy" bson:"hierarchy"`
	Graph     *graph.Graph       `json:"graph" bson:"graph"`
	Meta      Meta               `json:"meta" bson:"meta"`
}

// Entry is the cached form of a bundle: exactly one fetch generation,
// identified by the content hash the fetcher reported.
type Entry struct {
	Bundle      *Bundle `json:"bundle" bson:"bundle"`
	ContentHash string  `json:"content_hash" bson:"content_hash"`
	FetchedAt   string  `json:"fetched_at" bson:"fetched_at"`
}
