package ops

import (
	"context"
	"sync"

	"github.com/packhub/packhub/pkg/errors"
)

// errNotFound is the shared not-found error for store implementations.
func errNotFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "operation %s not found", id)
}

// ListFilter narrows and bounds a List query.
type ListFilter struct {
	// UserID restricts results to one user when non-nil.
	UserID *string

	// Limit bounds the result size. Validated by the registry (1..500).
	Limit int
}

// Store persists operation rows.
//
// Implementations must apply Update as a whole-row replacement and hand out
// copies from Get/List, so readers never share memory with the registry's
// writes.
type Store interface {
	// Insert persists a new operation row.
	Insert(ctx context.Context, op *Operation) error

	// Update replaces the row with the same ID. Unknown ids are an error.
	Update(ctx context.Context, op *Operation) error

	// Get returns the operation with the given id, or nil when unknown.
	Get(ctx context.Context, id string) (*Operation, error)

	// List returns operations most-recently-created first, filtered and
	// bounded by f.
	List(ctx context.Context, f ListFilter) ([]*Operation, error)
}

// =============================================================================
// Memory Store
// =============================================================================

// MemoryStore is an in-process Store for single-instance servers and tests.
// Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	rows  map[string]*Operation
	order []string // ids in insertion order; breaks created_at ties
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*Operation)}
}

// Insert persists a new operation row.
func (s *MemoryStore) Insert(ctx context.Context, op *Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[op.ID] = op.Clone()
	s.order = append(s.order, op.ID)
	return nil
}

// Update replaces the row with the same ID.
func (s *MemoryStore) Update(ctx context.Context, op *Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[op.ID]; !ok {
		return errNotFound(op.ID)
	}
	s.rows[op.ID] = op.Clone()
	return nil
}

// Get returns a copy of the operation, or nil when unknown.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return op.Clone(), nil
}

// List walks insertion order backwards: most-recently-created first.
func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]*Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*Operation{}
	for i := len(s.order) - 1; i >= 0 && len(out) < f.Limit; i-- {
		op := s.rows[s.order[i]]
		if f.UserID != nil && (op.UserID == nil || *op.UserID != *f.UserID) {
			continue
		}
		out = append(out, op.Clone())
	}
	return out, nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
