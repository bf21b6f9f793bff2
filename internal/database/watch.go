package database

import (
	"context"
	"sync"
)

// Stream is the consumer-facing side of a live view: snapshots on Updates,
// fetch failures on Err, idempotent Close. Watch is the store-backed
// implementation; tests substitute channel-driven fakes.
type Stream[T any] interface {
	Updates() <-chan T
	Err() <-chan error
	Close()
}

// FetchFunc produces the current snapshot for a watch.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Watch turns a change Notifier plus a fetch function into a live view of a
// query: it fetches once on start and re-fetches on every change signal,
// emitting each snapshot on Updates. All fetches run on one goroutine, so
// snapshots are delivered in monotonically increasing order for this watch.
//
// Updates carries at most one pending snapshot; a newer snapshot replaces an
// unconsumed older one, so a slow consumer only ever sees the freshest state.
// Fetch failures are reported on Err and do not stop the watch; the consumer
// decides whether an error is terminal. Closing the watch closes Updates.
type Watch[T any] struct {
	updates   chan T
	errs      chan error
	notifier  Notifier
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewWatch starts a watch. The notifier is owned by the watch and closed
// together with it.
func NewWatch[T any](ctx context.Context, notifier Notifier, fetch FetchFunc[T]) *Watch[T] {
	ctx, cancel := context.WithCancel(ctx)
	w := &Watch[T]{
		updates:  make(chan T, 1),
		errs:     make(chan error, 1),
		notifier: notifier,
		cancel:   cancel,
	}
	go w.run(ctx, fetch)
	return w
}

// Updates yields query snapshots, newest first when the consumer lags.
// Closed when the watch stops.
func (w *Watch[T]) Updates() <-chan T {
	return w.updates
}

// Err yields fetch errors. At most one error is buffered; subsequent errors
// replace an unconsumed one.
func (w *Watch[T]) Err() <-chan error {
	return w.errs
}

// Close stops the watch and its notifier. Idempotent and safe to call
// multiple times.
func (w *Watch[T]) Close() {
	w.closeOnce.Do(func() {
		w.cancel()
		w.notifier.Close()
	})
}

func (w *Watch[T]) run(ctx context.Context, fetch FetchFunc[T]) {
	defer close(w.updates)

	w.refetch(ctx, fetch)
	for {
		select {
		case _, ok := <-w.notifier.Changes():
			if !ok {
				return
			}
			w.refetch(ctx, fetch)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watch[T]) refetch(ctx context.Context, fetch FetchFunc[T]) {
	snapshot, err := fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		select {
		case w.errs <- err:
		default:
			// Replace the unconsumed error with the newest one.
			select {
			case <-w.errs:
			default:
			}
			select {
			case w.errs <- err:
			default:
			}
		}
		return
	}

	// Replace an unconsumed snapshot rather than blocking.
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- snapshot:
	case <-ctx.Done():
	}
}
