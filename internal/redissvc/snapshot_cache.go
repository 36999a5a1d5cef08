package redissvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
)

const snapshotKey = "dashboard:snapshot"

// SnapshotCache stores the latest dashboard snapshot as JSON.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnapshotCache(rs *RedisService, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{rdb: rs.Rdb(), ttl: ttl}
}

func (c *SnapshotCache) Load(ctx context.Context) (dashboard.Snapshot, bool, error) {
	data, err := c.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return dashboard.Snapshot{}, false, nil
	}
	if err != nil {
		return dashboard.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var snap dashboard.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return dashboard.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

func (c *SnapshotCache) Store(ctx context.Context, snap dashboard.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}
