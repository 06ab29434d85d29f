// Package feed maintains the live notification feed: an ordered view over
// the notifications table plus a subscription mechanism that pushes the
// full refreshed list to every viewer whenever the table changes.
//
// Full-refresh-on-any-change is deliberate. Incremental patching without
// server-side row versioning risks reordering bugs; refetching the whole
// ordered list guarantees every viewer converges on the store's order.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/patimap/backend/internal/domain"
	"github.com/patimap/backend/internal/observability"
	"github.com/patimap/backend/internal/repo"
)

// Lister is the slice of the notification repo the feed needs.
type Lister interface {
	List(ctx context.Context) ([]domain.Notification, error)
}

// ChangeSource delivers table change events. Satisfied by *repo.Listener.
type ChangeSource interface {
	Events() <-chan repo.ChangeEvent
}

// Subscription is a live registration on the feed. It must be released
// with Feed.Unsubscribe on every teardown path; a dangling subscription
// leaks its delivery goroutine.
type Subscription struct {
	id int

	// updates holds at most the latest list. A slow consumer skips
	// intermediate states and lands directly on the newest one, which is
	// safe because each update is the complete ordered list.
	updates chan []domain.Notification
	stop    chan struct{}
}

// Feed owns the subscriber registry and the dispatch loop.
type Feed struct {
	notifications Lister
	source        ChangeSource
	metrics       *observability.Metrics
	logger        *slog.Logger

	mu     sync.RWMutex
	subs   map[int]*Subscription
	nextID int
}

// New constructs a Feed. Call Run to start dispatching change events.
func New(notifications Lister, source ChangeSource, metrics *observability.Metrics, logger *slog.Logger) *Feed {
	return &Feed{
		notifications: notifications,
		source:        source,
		metrics:       metrics,
		logger:        logger,
		subs:          make(map[int]*Subscription),
	}
}

// List returns the current feed, ordered newest first as assigned by the
// store. Always returns a non-nil slice.
func (f *Feed) List(ctx context.Context) ([]domain.Notification, error) {
	entries, err := f.notifications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed.Feed.List: %w", err)
	}
	if entries == nil {
		return []domain.Notification{}, nil
	}
	return entries, nil
}

// Subscribe registers onChange to be invoked with the full ordered list
// after every change to the notifications table. Deliveries for one
// subscription are sequential; distinct subscriptions are independent, so
// one slow viewer cannot stall the others.
func (f *Feed) Subscribe(onChange func([]domain.Notification)) *Subscription {
	sub := &Subscription{
		updates: make(chan []domain.Notification, 1),
		stop:    make(chan struct{}),
	}

	f.mu.Lock()
	f.nextID++
	sub.id = f.nextID
	f.subs[sub.id] = sub
	f.mu.Unlock()

	f.metrics.FeedSubscribers.Inc()

	go func() {
		for {
			select {
			case <-sub.stop:
				return
			case entries := <-sub.updates:
				onChange(entries)
			}
		}
	}()

	return sub
}

// Unsubscribe releases a subscription. Safe to call more than once.
func (f *Feed) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	f.mu.Lock()
	_, registered := f.subs[sub.id]
	delete(f.subs, sub.id)
	f.mu.Unlock()

	if registered {
		close(sub.stop)
		f.metrics.FeedSubscribers.Dec()
	}
}

// Run consumes change events and fans refreshed lists out to subscribers
// until ctx is cancelled or the source closes.
func (f *Feed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-f.source.Events():
			if !ok {
				return
			}
			f.refresh(ctx)
		}
	}
}

// refresh re-lists the table and offers the result to every subscriber.
// A failed list is logged and skipped; the next change event retries.
func (f *Feed) refresh(ctx context.Context) {
	entries, err := f.List(ctx)
	if err != nil {
		f.logger.Error("feed refresh failed", "error", err)
		return
	}
	f.metrics.FeedRefreshes.Inc()

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sub := range f.subs {
		sub.offer(entries)
	}
}

// offer replaces any pending update with the newer list without blocking.
func (s *Subscription) offer(entries []domain.Notification) {
	for {
		select {
		case s.updates <- entries:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
