package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
)

const statsKeyPrefix = "stats:tickets:"

// StatisticsCache keeps recently computed statistics snapshots in Redis
// so dashboards polling at sub-5-second intervals do not trigger a full
// recompute on every request. Entries expire on a short TTL; cache
// failures degrade to recomputation, never to an error.
type StatisticsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatisticsCache creates the cache. A nil client or non-positive TTL
// disables caching.
func NewStatisticsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatisticsCache {
	return &StatisticsCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached snapshot for a window, if present.
func (c *StatisticsCache) Get(ctx context.Context, days int) (*domain.StatisticsSnapshot, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	raw, err := c.client.Get(ctx, statsKey(days)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("statistics cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var snapshot domain.StatisticsSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.logger.Warn("statistics cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &snapshot, true
}

// Set stores a snapshot under its window key.
func (c *StatisticsCache) Set(ctx context.Context, days int, snapshot *domain.StatisticsSnapshot) {
	if c == nil || c.client == nil || c.ttl <= 0 || snapshot == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("statistics cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, statsKey(days), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("statistics cache write failed", zap.Error(err))
	}
}

func statsKey(days int) string {
	return fmt.Sprintf("%s%d", statsKeyPrefix, days)
}
