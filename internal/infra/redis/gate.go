package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pharmakart/notify-gateway/internal/dedup"
	goredis "github.com/redis/go-redis/v9"
)

var _ dedup.Gate = (*RedisGate)(nil)

// RedisGate is the hardened deduplication gate: instead of the
// check-then-write pattern it reserves the event key atomically with
// SET NX PX, so two concurrent deliveries of the same transition cannot both
// pass. The prior record's content is still read from the log store for
// duplicate responses.
type RedisGate struct {
	client *goredis.Client
	finder dedup.RecentFinder
	window time.Duration
	now    func() time.Time
}

func NewRedisGate(client *goredis.Client, finder dedup.RecentFinder, window time.Duration) (*RedisGate, error) {
	return newRedisGate(client, finder, window, time.Now)
}

func newRedisGate(
	client *goredis.Client,
	finder dedup.RecentFinder,
	window time.Duration,
	nowFn func() time.Time,
) (*RedisGate, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if finder == nil {
		return nil, fmt.Errorf("recent finder is required")
	}
	if window <= 0 {
		window = dedup.DefaultWindow
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	return &RedisGate{
		client: client,
		finder: finder,
		window: window,
		now:    nowFn,
	}, nil
}

func (g *RedisGate) Check(ctx context.Context, key dedup.Key) (dedup.Result, error) {
	if g == nil || g.client == nil {
		return dedup.Result{}, fmt.Errorf("dedup gate is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reserved, err := g.client.SetNX(ctx, gateKey(key), "", g.window).Result()
	if err != nil {
		return dedup.Result{}, fmt.Errorf("failed to reserve dedup key: %w", err)
	}
	if reserved {
		return dedup.Result{}, nil
	}

	// Key already held: a prior delivery reserved this transition within the
	// window. The record may be missing if its pre-write failed.
	prior, err := g.finder.FindRecentDuplicate(ctx, key, g.now().UTC().Add(-g.window))
	if err != nil {
		return dedup.Result{Duplicate: true}, nil
	}

	return dedup.Result{Duplicate: true, Prior: prior}, nil
}

func gateKey(key dedup.Key) string {
	return fmt.Sprintf("dedup:%s:%s:%s:%s",
		strings.ToLower(key.Source.String()),
		strings.ToLower(key.EventType.String()),
		key.ResourceID,
		strings.ToLower(key.Status),
	)
}
