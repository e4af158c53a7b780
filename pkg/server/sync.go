package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/packhub/packhub/pkg/ops"
	"github.com/packhub/packhub/pkg/store"
)

// syncTimeout bounds one background refresh, detached from the request.
const syncTimeout = 2 * time.Minute

// OpTypeRepoSync is the operation type recorded for repository syncs.
const OpTypeRepoSync = "repo_sync"

// Syncer runs repository refreshes as tracked background operations.
//
// It is the reference worker for the operation registry: the registry itself
// knows nothing about workers, and the syncer drives each operation from
// queued to a terminal state. A syncer that dies mid-run leaves its
// operation permanently running, which is visible to operators through the
// operations listing.
type Syncer struct {
	store    *store.Store
	registry *ops.Registry
	logger   *log.Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(st *store.Store, registry *ops.Registry, logger *log.Logger) *Syncer {
	return &Syncer{store: st, registry: registry, logger: logger}
}

// Trigger creates a queued repo_sync operation and starts the refresh in the
// background. The returned operation is the queued row; callers poll the
// registry for progress.
func (s *Syncer) Trigger(ctx context.Context, repoKey string, userID *string) (*ops.Operation, error) {
	op, err := s.registry.Create(ctx, OpTypeRepoSync, userID)
	if err != nil {
		return nil, err
	}

	go s.run(op.ID, repoKey)
	return op, nil
}

// run drives one sync operation to a terminal state. It uses its own
// context: the triggering HTTP request finishing must not cancel the sync.
func (s *Syncer) run(opID, repoKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	if err := s.registry.Start(ctx, opID); err != nil {
		s.logger.Error("sync start failed", "operation", opID, "err", err)
		return
	}
	if err := s.registry.ReportProgress(ctx, opID, 10, "fetching manifest"); err != nil {
		s.logger.Warn("sync progress update failed", "operation", opID, "err", err)
	}

	bundle, err := s.store.Get(ctx, repoKey, true)
	if err != nil {
		s.logger.Warn("sync failed", "operation", opID, "repo", repoKey, "err", err)
		if ferr := s.registry.Fail(ctx, opID, err.Error()); ferr != nil {
			s.logger.Error("sync fail transition failed", "operation", opID, "err", ferr)
		}
		return
	}

	result := map[string]any{
		"repo":      repoKey,
		"packs":     len(bundle.Manifest.Packs),
		"pages":     len(bundle.Manifest.Pages),
		"has_cycle": bundle.Graph.HasCycle,
		"timestamp": bundle.Meta.Timestamp,
	}
	if err := s.registry.Complete(ctx, opID, result); err != nil {
		s.logger.Error("sync complete transition failed", "operation", opID, "err", err)
		return
	}
	s.logger.Info("sync finished", "operation", opID, "repo", repoKey)
}
