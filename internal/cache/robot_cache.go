package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tradewizard_backend/internal/logger"
	"tradewizard_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// RobotCache keeps robot catalog listings in redis. A nil *RobotCache is a
// valid no-op cache, so callers never branch on configuration.
type RobotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRobotCache connects to redis from a URL. An empty URL disables caching.
func NewRobotCache(redisURL string, ttl time.Duration) *RobotCache {
	if redisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Error("invalid redis url, catalog cache disabled", "error", err)
		return nil
	}

	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &RobotCache{
		client: redis.NewClient(opt),
		ttl:    ttl,
	}
}

func listKey(robotType, category, search string, page, pageSize int) string {
	return fmt.Sprintf("robots:list:%s:%s:%s:%d:%d", robotType, category, search, page, pageSize)
}

type cachedList struct {
	Robots []models.Robot `json:"robots"`
	Total  int64          `json:"total"`
}

// GetList returns a cached listing, or false on miss or any redis error.
func (c *RobotCache) GetList(ctx context.Context, robotType, category, search string, page, pageSize int) ([]models.Robot, int64, bool) {
	if c == nil {
		return nil, 0, false
	}

	raw, err := c.client.Get(ctx, listKey(robotType, category, search, page, pageSize)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.CtxWarn(ctx, "robot cache read failed", "error", err)
		}
		return nil, 0, false
	}

	var entry cachedList
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, 0, false
	}
	return entry.Robots, entry.Total, true
}

// SetList stores a listing. Failures are logged and swallowed; the cache is
// an optimization, never a dependency.
func (c *RobotCache) SetList(ctx context.Context, robotType, category, search string, page, pageSize int, robots []models.Robot, total int64) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(cachedList{Robots: robots, Total: total})
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, listKey(robotType, category, search, page, pageSize), raw, c.ttl).Err(); err != nil {
		logger.CtxWarn(ctx, "robot cache write failed", "error", err)
	}
}

// Invalidate drops all cached listings after a catalog write.
func (c *RobotCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, "robots:list:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.CtxWarn(ctx, "robot cache invalidation failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.CtxWarn(ctx, "robot cache scan failed", "error", err)
	}
}
