// Package dedup suppresses redelivered webhook events. Upstream delivery is
// at-least-once: the same status transition can arrive multiple times within
// seconds to minutes, so events are keyed on (source, eventType, resourceId,
// status) rather than an unstable per-delivery id.
package dedup

import (
	"context"
	"time"

	"github.com/pharmakart/notify-gateway/internal/domain"
)

// DefaultWindow is the trailing interval within which a repeated
// (resource, status) pair counts as a redelivery.
const DefaultWindow = 5 * time.Minute

// Key identifies one logical status transition.
type Key struct {
	Source     domain.Source
	EventType  domain.EventType
	ResourceID string
	Status     string
}

// Result is the gate's verdict. Prior carries the earlier record's content
// when one could be found, so duplicate responses can echo what was sent.
type Result struct {
	Duplicate bool
	Prior     *domain.WebhookLog
}

// Gate decides whether an event is a not-yet-seen transition.
type Gate interface {
	Check(ctx context.Context, key Key) (Result, error)
}

// RecentFinder looks up the most recent log record matching a key written at
// or after the given time.
type RecentFinder interface {
	FindRecentDuplicate(ctx context.Context, key Key, since time.Time) (*domain.WebhookLog, error)
}

// StoreGate consults the webhook log store directly. The check and the
// subsequent log pre-write are not atomic: two deliveries processed
// concurrently can both pass the gate. That window is accepted here; the
// Redis gate closes it with an atomic reservation.
type StoreGate struct {
	finder RecentFinder
	window time.Duration
	now    func() time.Time
}

func NewStoreGate(finder RecentFinder, window time.Duration) *StoreGate {
	return newStoreGate(finder, window, time.Now)
}

func newStoreGate(finder RecentFinder, window time.Duration, nowFn func() time.Time) *StoreGate {
	if window <= 0 {
		window = DefaultWindow
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &StoreGate{finder: finder, window: window, now: nowFn}
}

func (g *StoreGate) Check(ctx context.Context, key Key) (Result, error) {
	since := g.now().UTC().Add(-g.window)

	prior, err := g.finder.FindRecentDuplicate(ctx, key, since)
	if err != nil {
		return Result{}, err
	}
	if prior == nil {
		return Result{}, nil
	}

	return Result{Duplicate: true, Prior: prior}, nil
}
