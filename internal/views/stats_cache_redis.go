package views

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidtube/backend/internal/models"
)

// RedisStats wraps a StatsSource with a Redis-backed cache so multiple
// instances share warmed aggregates. Redis failures fall through to the
// underlying source.
type RedisStats struct {
	base   StatsSource
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStats returns a StatsSource that caches aggregates in Redis for the
// provided TTL.
func NewRedisStats(base StatsSource, client *redis.Client, ttl time.Duration) *RedisStats {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisStats{base: base, client: client, ttl: ttl}
}

func statsKey(channelID string) string {
	return "vidtube:stats:" + channelID
}

// ChannelStats returns cached aggregates when available, otherwise it
// delegates to the underlying source and stores the result.
func (c *RedisStats) ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	if c == nil || c.base == nil {
		return models.ChannelStats{}, ErrSourceUnavailable
	}

	if c.client != nil {
		raw, err := c.client.Get(ctx, statsKey(channelID)).Bytes()
		if err == nil {
			var stats models.ChannelStats
			if err := json.Unmarshal(raw, &stats); err == nil {
				return stats, nil
			}
		} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
			return models.ChannelStats{}, ctx.Err()
		}
	}

	stats, err := c.base.ChannelStats(ctx, channelID)
	if err != nil {
		return models.ChannelStats{}, err
	}

	if c.client != nil {
		if raw, err := json.Marshal(stats); err == nil {
			_ = c.client.Set(ctx, statsKey(channelID), raw, c.ttl).Err()
		}
	}

	return stats, nil
}

// Invalidate drops a channel's cached aggregates.
func (c *RedisStats) Invalidate(ctx context.Context, channelID string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, statsKey(channelID)).Err()
}
