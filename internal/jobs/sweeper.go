package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/forgo/wander/engine/internal/model"
	"github.com/forgo/wander/engine/internal/service"
)

var (
	sweepGroupsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wander_sweep_groups_scanned_total",
		Help: "Shared groups examined by the cleanup sweeper.",
	})
	sweepGroupsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wander_sweep_groups_removed_total",
		Help: "Empty shared groups removed by the cleanup sweeper.",
	})
	sweepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wander_sweep_errors_total",
		Help: "Sweep passes that ended in an error.",
	})
)

// OwnerLister enumerates the distinct owners holding shared groups
type OwnerLister interface {
	ListOwners(ctx context.Context) ([]model.UserID, error)
}

// GroupSweeper runs one cleanup pass over an owner's groups
type GroupSweeper interface {
	Sweep(ctx context.Context, owner model.UserID) (service.SweepResult, error)
}

// Sweeper periodically scans every group owner and removes empty shared
// groups that outlived their grace period. It is the safety net behind the
// synchronous post-delete check: if that check is skipped (crash, lost
// connection), the sweeper converges the store to the same state.
type Sweeper struct {
	owners   OwnerLister
	cleanup  GroupSweeper
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// SweeperConfig holds configuration for the sweeper job
type SweeperConfig struct {
	Owners  OwnerLister
	Cleanup GroupSweeper
	// Interval defaults to 1 minute when zero
	Interval time.Duration
	Logger   *slog.Logger
}

// NewSweeper creates a new sweeper job
func NewSweeper(cfg SweeperConfig) *Sweeper {
	interval := cfg.Interval
	if interval == 0 {
		interval = time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		owners:   cfg.Owners,
		cleanup:  cfg.Cleanup,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweeper job
func (s *Sweeper) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()
	s.logger.Info("group sweeper started", slog.Duration("interval", s.interval))
}

// Stop gracefully stops the sweeper job
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("group sweeper stopped")
}

// run is the main loop
func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepAll()
		case <-s.stopCh:
			return
		}
	}
}

// sweepAll runs one full pass over every owner
func (s *Sweeper) sweepAll() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("sweep pass failed", slog.String("error", err.Error()))
	}
}

// RunOnce runs one sweep pass across all owners (for testing or manual
// trigger). Owners are processed independently; one owner failing does not
// stop the pass, and the first error is returned after the pass completes.
func (s *Sweeper) RunOnce(ctx context.Context) (service.SweepResult, error) {
	var total service.SweepResult

	owners, err := s.owners.ListOwners(ctx)
	if err != nil {
		sweepErrors.Inc()
		return total, err
	}

	var firstErr error
	for _, owner := range owners {
		result, err := s.cleanup.Sweep(ctx, owner)
		total.Scanned += result.Scanned
		total.Removed += result.Removed
		if err != nil {
			sweepErrors.Inc()
			s.logger.Error("owner sweep failed",
				slog.String("owner", string(owner)),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	sweepGroupsScanned.Add(float64(total.Scanned))
	sweepGroupsRemoved.Add(float64(total.Removed))
	if total.Removed > 0 {
		s.logger.Info("sweep pass complete",
			slog.Int("scanned", total.Scanned),
			slog.Int("removed", total.Removed),
		)
	}
	return total, firstErr
}

// IsRunning returns whether the sweeper is running
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
