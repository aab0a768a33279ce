// Package cache stores periodic scan results in Redis so read endpoints
// can serve the latest snapshot without re-running the scan.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshot keys.
const (
	KeySuspiciousActivity = "modbackend:snapshot:suspicious"
	KeyReportAnalytics    = "modbackend:snapshot:report_analytics"
	KeyOverview           = "modbackend:snapshot:overview:%s" // per range
)

// ErrMiss is returned when no snapshot is stored (or caching is disabled).
var ErrMiss = errors.New("cache miss")

// SnapshotCache is a thin JSON layer over Redis. A nil *SnapshotCache is
// valid and always misses, so callers need no "is caching on" branches.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis. Returns nil (caching disabled) when addr is empty.
func New(addr, password string, db int, ttl time.Duration) *SnapshotCache {
	if addr == "" {
		return nil
	}
	return &SnapshotCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl: ttl,
	}
}

// OverviewKey builds the per-range overview snapshot key.
func OverviewKey(rng string) string {
	return fmt.Sprintf(KeyOverview, rng)
}

func (c *SnapshotCache) Set(ctx context.Context, key string, v interface{}) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

func (c *SnapshotCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c == nil {
		return ErrMiss
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Close releases the Redis connection. Safe on nil.
func (c *SnapshotCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
