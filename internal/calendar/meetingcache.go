package calendar

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agreeto/backend/pkg/redis"
)

// MeetingProviderCache caches the resolved online-meeting provider per
// account. Both methods are best-effort: a miss or a backend failure simply
// falls through to the live Graph lookup.
type MeetingProviderCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

const meetingProviderTTL = 12 * time.Hour

type redisMeetingCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisMeetingProviderCache returns a redis-backed MeetingProviderCache.
func NewRedisMeetingProviderCache(rdb *redis.Client, logger *zap.Logger) MeetingProviderCache {
	return &redisMeetingCache{rdb: rdb, logger: logger}
}

func (c *redisMeetingCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *redisMeetingCache) Set(ctx context.Context, key, value string) {
	if err := c.rdb.Set(ctx, key, value, meetingProviderTTL).Err(); err != nil {
		c.logger.Debug("meeting provider cache write failed", zap.Error(err))
	}
}
