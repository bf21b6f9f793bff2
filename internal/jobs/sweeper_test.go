package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/forgo/wander/engine/internal/model"
	"github.com/forgo/wander/engine/internal/service"
)

// ============================================================================
// Mocks
// ============================================================================

type mockOwnerLister struct {
	listOwnersFunc func(ctx context.Context) ([]model.UserID, error)
}

func (m *mockOwnerLister) ListOwners(ctx context.Context) ([]model.UserID, error) {
	if m.listOwnersFunc != nil {
		return m.listOwnersFunc(ctx)
	}
	return nil, nil
}

type mockGroupSweeper struct {
	sweepFunc func(ctx context.Context, owner model.UserID) (service.SweepResult, error)
}

func (m *mockGroupSweeper) Sweep(ctx context.Context, owner model.UserID) (service.SweepResult, error) {
	if m.sweepFunc != nil {
		return m.sweepFunc(ctx, owner)
	}
	return service.SweepResult{}, nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func newTestSweeper(owners *mockOwnerLister, cleanup *mockGroupSweeper, interval time.Duration) *Sweeper {
	if owners == nil {
		owners = &mockOwnerLister{}
	}
	if cleanup == nil {
		cleanup = &mockGroupSweeper{}
	}
	return NewSweeper(SweeperConfig{
		Owners:   owners,
		Cleanup:  cleanup,
		Interval: interval,
		Logger:   slog.New(slog.DiscardHandler),
	})
}

// ============================================================================
// Sweeper Tests
// ============================================================================

func TestRunOnce_AggregatesAcrossOwners(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	owners := &mockOwnerLister{
		listOwnersFunc: func(ctx context.Context) ([]model.UserID, error) {
			return []model.UserID{"user:alice", "user:bob"}, nil
		},
	}
	cleanup := &mockGroupSweeper{
		sweepFunc: func(ctx context.Context, owner model.UserID) (service.SweepResult, error) {
			if owner == "user:alice" {
				return service.SweepResult{Scanned: 3, Removed: 1}, nil
			}
			return service.SweepResult{Scanned: 2, Removed: 0}, nil
		},
	}

	sweeper := newTestSweeper(owners, cleanup, time.Hour)

	result, err := sweeper.RunOnce(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Scanned != 5 || result.Removed != 1 {
		t.Errorf("expected scanned=5 removed=1, got %+v", result)
	}
}

func TestRunOnce_OneOwnerFailing_OthersStillSwept(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	owners := &mockOwnerLister{
		listOwnersFunc: func(ctx context.Context) ([]model.UserID, error) {
			return []model.UserID{"user:alice", "user:bob", "user:carol"}, nil
		},
	}
	var swept []model.UserID
	cleanup := &mockGroupSweeper{
		sweepFunc: func(ctx context.Context, owner model.UserID) (service.SweepResult, error) {
			swept = append(swept, owner)
			if owner == "user:bob" {
				return service.SweepResult{}, errors.New("connection reset")
			}
			return service.SweepResult{Scanned: 1}, nil
		},
	}

	sweeper := newTestSweeper(owners, cleanup, time.Hour)

	result, err := sweeper.RunOnce(ctx)
	if err == nil {
		t.Error("expected the pass to report the owner failure")
	}
	if len(swept) != 3 {
		t.Errorf("expected all 3 owners attempted, got %v", swept)
	}
	if result.Scanned != 2 {
		t.Errorf("expected the surviving owners counted, got %+v", result)
	}
}

func TestRunOnce_OwnerListFails_ReturnsError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	owners := &mockOwnerLister{
		listOwnersFunc: func(ctx context.Context) ([]model.UserID, error) {
			return nil, errors.New("query failed")
		},
	}

	sweeper := newTestSweeper(owners, nil, time.Hour)

	if _, err := sweeper.RunOnce(ctx); err == nil {
		t.Error("expected error when owner listing fails")
	}
}

func TestSweeper_StartStop_Lifecycle(t *testing.T) {
	t.Parallel()

	sweeper := newTestSweeper(nil, nil, time.Hour)

	if sweeper.IsRunning() {
		t.Error("expected sweeper not running before Start")
	}

	sweeper.Start()
	if !sweeper.IsRunning() {
		t.Error("expected sweeper running after Start")
	}
	sweeper.Start() // second Start is a no-op

	sweeper.Stop()
	if sweeper.IsRunning() {
		t.Error("expected sweeper stopped after Stop")
	}
	sweeper.Stop() // second Stop is a no-op
}
