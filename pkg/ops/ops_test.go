package ops

import (
	"context"
	"testing"
	"time"

	"github.com/packhub/packhub/pkg/errors"
)

func testRegistry() *Registry {
	t := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seq := 0
	return NewRegistry(NewMemoryStore(),
		WithClock(func() time.Time {
			t = t.Add(time.Millisecond)
			return t
		}),
		WithIDFunc(func(opType string) string {
			seq++
			return opType + "-" + string(rune('0'+seq))
		}),
	)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	r := testRegistry()

	op, err := r.Create(ctx, "repo_sync", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if op.Status != StatusQueued {
		t.Errorf("Status = %s, want queued", op.Status)
	}
	if op.Progress != nil {
		t.Errorf("Progress = %v, want nil before first report", *op.Progress)
	}
	if op.Type != "repo_sync" {
		t.Errorf("Type = %q", op.Type)
	}
	if op.UserID != nil {
		t.Error("UserID should be nil for system operations")
	}
	if op.CreatedAt == "" || op.UpdatedAt == "" {
		t.Error("timestamps must be set on create")
	}
	if op.StartedAt != "" {
		t.Error("StartedAt must be empty before start")
	}
}

func TestCreateEmptyType(t *testing.T) {
	_, err := testRegistry().Create(context.Background(), "", nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	r := testRegistry()

	op, _ := r.Create(ctx, "repo_sync", nil)

	if err := r.Start(ctx, op.ID); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	got, _ := r.Get(ctx, op.ID)
	if got.Status != StatusRunning {
		t.Errorf("Status = %s, want running", got.Status)
	}
	if got.StartedAt == "" {
		t.Error("StartedAt must be set after start")
	}

	if err := r.ReportProgress(ctx, op.ID, 40, "working"); err != nil {
		t.Fatalf("ReportProgress error: %v", err)
	}
	got, _ = r.Get(ctx, op.ID)
	if got.Progress == nil || *got.Progress != 40 {
		t.Errorf("Progress = %v, want 40", got.Progress)
	}
	if got.Message != "working" {
		t.Errorf("Message = %q", got.Message)
	}

	// Monotonicity: 30 after 40 is rejected.
	err := r.ReportProgress(ctx, op.ID, 30, "backwards")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("decreasing progress error = %v, want INVALID_INPUT", err)
	}
	got, _ = r.Get(ctx, op.ID)
	if *got.Progress != 40 {
		t.Errorf("Progress = %d after rejected report, want 40", *got.Progress)
	}

	if err := r.Complete(ctx, op.ID, map[string]any{"packs": 2}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	got, _ = r.Get(ctx, op.ID)
	if got.Status != StatusSuccess {
		t.Errorf("Status = %s, want success", got.Status)
	}
	if got.Progress == nil || *got.Progress != 100 {
		t.Errorf("Progress = %v, want 100 on success", got.Progress)
	}
	if got.Result["packs"] != 2 {
		t.Errorf("Result = %v", got.Result)
	}

	// Terminal states are immutable.
	if err := r.Fail(ctx, op.ID, "too late"); !errors.Is(err, errors.ErrCodeInvalidTransition) {
		t.Errorf("Fail after Complete error = %v, want INVALID_TRANSITION", err)
	}
}

func TestProgressBounds(t *testing.T) {
	ctx := context.Background()
	r := testRegistry()
	op, _ := r.Create(ctx, "t", nil)
	_ = r.Start(ctx, op.ID)

	for _, pct := range []int{-1, 101} {
		if err := r.ReportProgress(ctx, op.ID, pct, ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ReportProgress(%d) error = %v, want INVALID_INPUT", pct, err)
		}
	}
	// Boundaries are valid.
	if err := r.ReportProgress(ctx, op.ID, 0, ""); err != nil {
		t.Errorf("ReportProgress(0) error: %v", err)
	}
	if err := r.ReportProgress(ctx, op.ID, 100, ""); err != nil {
		t.Errorf("ReportProgress(100) error: %v", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	r := testRegistry()

	op, _ := r.Create(ctx, "t", nil)

	// Cannot report progress or complete while queued.
	if err := r.ReportProgress(ctx, op.ID, 10, ""); !errors.Is(err, errors.ErrCodeInvalidTransition) {
		t.Errorf("queued ReportProgress error = %v, want INVALID_TRANSITION", err)
	}
	if err := r.Complete(ctx, op.ID, nil); !errors.Is(err, errors.ErrCodeInvalidTransition) {
		t.Errorf("queued Complete error = %v, want INVALID_TRANSITION", err)
	}

	// Double start is rejected.
	_ = r.Start(ctx, op.ID)
	if err := r.Start(ctx, op.ID); !errors.Is(err, errors.ErrCodeInvalidTransition) {
		t.Errorf("double Start error = %v, want INVALID_TRANSITION", err)
	}
}

func TestFailFromQueuedAndRunning(t *testing.T) {
	ctx := context.Background()
	r := testRegistry()

	// Queued operations can fail directly.
	op1, _ := r.Create(ctx, "t", nil)
	if err := r.Fail(ctx, op1.ID, "never started"); err != nil {
		t.Fatalf("Fail queued error: %v", err)
	}
	got, _ := r.Get(ctx, op1.ID)
	if got.Status != StatusFailed || got.Message != "never started" {
		t.Errorf("op = %+v", got)
	}

	// Running operations can fail too.
	op2, _ := r.Create(ctx, "t", nil)
	_ = r.Start(ctx, op2.ID)
	if err := r.Fail(ctx, op2.ID, "boom"); err != nil {
		t.Fatalf("Fail running error: %v", err)
	}

	// Failed is terminal.
	if err := r.Start(ctx, op2.ID); !errors.Is(err, errors.ErrCodeInvalidTransition) {
		t.Errorf("Start after Fail error = %v, want INVALID_TRANSITION", err)
	}
}

func TestGetUnknown(t *testing.T) {
	op, err := testRegistry().Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if op != nil {
		t.Errorf("op = %+v, want nil for unknown id", op)
	}
}

func TestTransitionUnknownID(t *testing.T) {
	r := testRegistry()
	if err := r.Start(context.Background(), "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	r := testRegistry()

	alice := "alice"
	_, _ = r.Create(ctx, "first", nil)
	_, _ = r.Create(ctx, "second", &alice)
	_, _ = r.Create(ctx, "third", nil)

	// Newest first.
	list, err := r.List(ctx, nil, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].Type != "third" || list[2].Type != "first" {
		t.Errorf("order = %s, %s, %s", list[0].Type, list[1].Type, list[2].Type)
	}

	// User filter.
	list, err = r.List(ctx, &alice, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 1 || list[0].Type != "second" {
		t.Errorf("filtered list = %+v", list)
	}

	// Limit.
	list, _ = r.List(ctx, nil, 2)
	if len(list) != 2 {
		t.Errorf("limited len = %d, want 2", len(list))
	}

	// Limit bounds.
	for _, bad := range []int{0, -1, 501} {
		if _, err := r.List(ctx, nil, bad); !errors.Is(err, errors.ErrCodeInvalidLimit) {
			t.Errorf("List limit %d error = %v, want INVALID_LIMIT", bad, err)
		}
	}
}

func TestStoreHandsOutClones(t *testing.T) {
	ctx := context.Background()
	r := testRegistry()

	op, _ := r.Create(ctx, "t", nil)
	got, _ := r.Get(ctx, op.ID)
	got.Status = StatusFailed
	got.Message = "mutated"

	fresh, _ := r.Get(ctx, op.ID)
	if fresh.Status != StatusQueued || fresh.Message != "" {
		t.Errorf("caller mutation leaked into store: %+v", fresh)
	}
}

func TestIDPrefix(t *testing.T) {
	r := NewRegistry(NewMemoryStore())
	op, err := r.Create(context.Background(), "repo_sync", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(op.ID) <= len("repo_sync-") || op.ID[:len("repo_sync-")] != "repo_sync-" {
		t.Errorf("ID = %q, want repo_sync- prefix", op.ID)
	}
}

func TestTimestampsSortable(t *testing.T) {
	ctx := context.Background()
	r := testRegistry()

	op, _ := r.Create(ctx, "t", nil)
	created := op.CreatedAt
	_ = r.Start(ctx, op.ID)
	got, _ := r.Get(ctx, op.ID)

	// Fixed-width form: lexicographic order equals chronological order.
	if !(created < got.UpdatedAt) {
		t.Errorf("CreatedAt %q not before UpdatedAt %q", created, got.UpdatedAt)
	}
	if len(created) != len("2006-01-02T15:04:05.000Z") {
		t.Errorf("timestamp %q is not fixed-width", created)
	}
}
