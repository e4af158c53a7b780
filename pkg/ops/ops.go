// Package ops tracks long-running background operations through a queryable
// state machine.
//
// An operation moves queued -> running -> {success | failed}; terminal states
// are final. There is no cancellation and no retry at this layer: a worker
// that never reaches a terminal transition leaves its operation permanently
// running, which is an operational concern for callers, not a registry bug.
//
// The registry is the only writer of operation rows after creation, and all
// mutations are whole-row updates, so concurrent readers never observe an
// inconsistent status/progress/message combination. Reads never block on a
// running operation's worker.
package ops

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/packhub/packhub/pkg/errors"
	"github.com/packhub/packhub/pkg/observability"
)

// Status is the lifecycle state of an operation.
type Status string

// Operation lifecycle states.
const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// timestampLayout is the fixed-width sortable form used for all operation
// timestamps. Lexicographic order equals chronological order.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Operation is one tracked unit of background work.
type Operation struct {
	ID       string         `json:"operation_id" bson:"operation_id"`
	Type     string         `json:"operation_type" bson:"operation_type"`
	Status   Status         `json:"status" bson:"status"`
	Progress *int           `json:"progress" bson:"progress"`
	Message  string         `json:"message,omitempty" bson:"message,omitempty"`
	Result   map[string]any `json:"result_data,omitempty" bson:"result_data,omitempty"`

	// UserID is nil for system-owned operations.
	UserID *string `json:"user_id" bson:"user_id"`

	CreatedAt string `json:"created_at" bson:"created_at"`
	StartedAt string `json:"started_at,omitempty" bson:"started_at,omitempty"`
	UpdatedAt string `json:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate persisted rows.
func (o *Operation) Clone() *Operation {
	c := *o
	if o.Progress != nil {
		p := *o.Progress
		c.Progress = &p
	}
	if o.UserID != nil {
		u := *o.UserID
		c.UserID = &u
	}
	if o.Result != nil {
		c.Result = make(map[string]any, len(o.Result))
		for k, v := range o.Result {
			c.Result[k] = v
		}
	}
	return &c
}

// =============================================================================
// Registry
// =============================================================================

// Registry manages operation rows on top of a persistence Store.
// Safe for concurrent use when the underlying store is.
type Registry struct {
	store Store
	clock func() time.Time
	newID func(opType string) string
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock injects a clock for deterministic timestamps in tests.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithIDFunc overrides operation id generation.
func WithIDFunc(newID func(opType string) string) Option {
	return func(r *Registry) { r.newID = newID }
}

// NewRegistry creates a Registry backed by store.
func NewRegistry(store Store, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		clock: time.Now,
		newID: func(opType string) string {
			return opType + "-" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create allocates a new queued operation and persists it.
// userID may be nil for system-owned operations.
func (r *Registry) Create(ctx context.Context, opType string, userID *string) (*Operation, error) {
	if opType == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "operation type cannot be empty")
	}

	now := r.timestamp()
	op := &Operation{
		ID:        r.newID(opType),
		Type:      opType,
		Status:    StatusQueued,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Insert(ctx, op); err != nil {
		return nil, err
	}

	observability.Ops().OnCreate(ctx, opType)
	return op.Clone(), nil
}

// Start transitions an operation from queued to running.
func (r *Registry) Start(ctx context.Context, id string) error {
	return r.transition(ctx, id, func(op *Operation) error {
		if op.Status != StatusQueued {
			return errors.New(errors.ErrCodeInvalidTransition,
				"operation %s is %s, cannot start", id, op.Status)
		}
		op.Status = StatusRunning
		op.StartedAt = r.timestamp()
		return nil
	})
}

// ReportProgress updates progress and message while an operation is running.
// The percentage must lie in [0,100] and never decrease.
func (r *Registry) ReportProgress(ctx context.Context, id string, pct int, message string) error {
	if pct < 0 || pct > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "progress %d outside [0,100]", pct)
	}
	return r.transition(ctx, id, func(op *Operation) error {
		if op.Status != StatusRunning {
			return errors.New(errors.ErrCodeInvalidTransition,
				"operation %s is %s, cannot report progress", id, op.Status)
		}
		if op.Progress != nil && pct < *op.Progress {
			return errors.New(errors.ErrCodeInvalidInput,
				"progress cannot decrease from %d to %d", *op.Progress, pct)
		}
		op.Progress = &pct
		op.Message = message
		return nil
	})
}

// Complete transitions a running operation to success with progress 100.
func (r *Registry) Complete(ctx context.Context, id string, result map[string]any) error {
	return r.transition(ctx, id, func(op *Operation) error {
		if op.Status != StatusRunning {
			return errors.New(errors.ErrCodeInvalidTransition,
				"operation %s is %s, cannot complete", id, op.Status)
		}
		full := 100
		op.Status = StatusSuccess
		op.Progress = &full
		op.Result = result
		return nil
	})
}

// Fail transitions a queued or running operation to failed.
func (r *Registry) Fail(ctx context.Context, id string, message string) error {
	return r.transition(ctx, id, func(op *Operation) error {
		if op.Status != StatusQueued && op.Status != StatusRunning {
			return errors.New(errors.ErrCodeInvalidTransition,
				"operation %s is %s, cannot fail", id, op.Status)
		}
		op.Status = StatusFailed
		op.Message = message
		return nil
	})
}

// Get returns the operation with the given id, or nil when unknown.
func (r *Registry) Get(ctx context.Context, id string) (*Operation, error) {
	return r.store.Get(ctx, id)
}

// List returns operations, most-recently-created first. A non-nil userID
// restricts results to that user. Limit must lie in 1..500.
func (r *Registry) List(ctx context.Context, userID *string, limit int) ([]*Operation, error) {
	if err := errors.ValidateListLimit(limit); err != nil {
		return nil, err
	}
	return r.store.List(ctx, ListFilter{UserID: userID, Limit: limit})
}

// transition loads an operation, applies mutate, and writes the whole row
// back. NOT_FOUND is surfaced for unknown ids.
func (r *Registry) transition(ctx context.Context, id string, mutate func(*Operation) error) error {
	op, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if op == nil {
		return errors.New(errors.ErrCodeNotFound, "operation %s not found", id)
	}

	from := op.Status
	if err := mutate(op); err != nil {
		return err
	}
	op.UpdatedAt = r.timestamp()

	if err := r.store.Update(ctx, op); err != nil {
		return err
	}
	if op.Status != from {
		observability.Ops().OnTransition(ctx, op.Type, string(from), string(op.Status))
	}
	return nil
}

func (r *Registry) timestamp() string {
	return r.clock().UTC().Format(timestampLayout)
}
