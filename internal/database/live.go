package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Notifier delivers change signals for one table. The engine treats every
// live-query notification as an invalidation signal and re-runs its own
// filtered SELECT, rather than folding individual CREATE/UPDATE/DELETE
// payloads into local state. Re-querying from a single goroutine is what
// makes snapshots monotonic per watch.
type Notifier interface {
	// Changes yields one value per change to the table. The channel is
	// closed when the notifier is closed or the connection drops.
	Changes() <-chan struct{}

	// Close stops the live query. Idempotent and safe to call concurrently.
	Close()
}

// Notify starts a SurrealDB live query on the given table and returns a
// Notifier for it. Each call holds one live query on the server until the
// returned Notifier is closed.
func (s *SurrealDB) Notify(ctx context.Context, table string) (Notifier, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	liveID, err := surrealdb.Live(ctx, s.db, models.Table(table), false)
	if err != nil {
		return nil, fmt.Errorf("%w: live query failed: %v", ErrQuery, err)
	}

	notifications, err := s.db.LiveNotifications(liveID.String())
	if err != nil {
		_ = surrealdb.Kill(ctx, s.db, liveID.String())
		return nil, fmt.Errorf("%w: live notifications failed: %v", ErrQuery, err)
	}

	n := &liveNotifier{
		db:      s.db,
		liveID:  liveID.String(),
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	go n.pump(notifications)
	return n, nil
}

// liveNotifier adapts a SurrealDB live-notification channel to the Notifier
// interface, coalescing bursts into at most one pending signal.
type liveNotifier struct {
	db        *surrealdb.DB
	liveID    string
	changes   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func (n *liveNotifier) Changes() <-chan struct{} {
	return n.changes
}

func (n *liveNotifier) Close() {
	n.closeOnce.Do(func() {
		close(n.done)
		// Kill is best-effort: the connection may already be gone.
		_ = surrealdb.Kill(context.Background(), n.db, n.liveID)
	})
}

func (n *liveNotifier) pump(notifications chan connection.Notification) {
	defer close(n.changes)
	for {
		select {
		case _, ok := <-notifications:
			if !ok {
				return
			}
			// Coalesce: if a signal is already pending, this change is
			// covered by the re-query it will trigger.
			select {
			case n.changes <- struct{}{}:
			default:
			}
		case <-n.done:
			return
		}
	}
}
