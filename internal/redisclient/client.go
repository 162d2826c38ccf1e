package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"
)

const recentActivityKey = "activity:recent"

// Client mirrors hot read paths into Redis: the recent-activity feed and
// per-session commit markers. Everything here is best-effort — the in-memory
// store stays authoritative and callers treat Redis errors as cache misses.
// A nil *Client is valid and disables the mirror.
type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, logger: util.GetLogger()}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// PushActivity mirrors an activity entry to the recent-activity list,
// trimmed to the newest 100 entries.
func (c *Client) PushActivity(ctx context.Context, entry models.Activity) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("Failed to marshal activity entry", zap.Error(err))
		return
	}

	pipe := c.rdb.Pipeline()
	pipe.LPush(ctx, recentActivityKey, payload)
	pipe.LTrim(ctx, recentActivityKey, 0, 99)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Failed to mirror activity to Redis", zap.Error(err))
	}
}

// MarkCommitted records that a scan session committed, with a TTL. Returns
// false if the marker already existed, which signals a duplicate commit
// from another replica. Errors degrade to "not a duplicate" so Redis being
// down never blocks a commit.
func (c *Client) MarkCommitted(ctx context.Context, sessionID string, ttl time.Duration) bool {
	if c == nil {
		return true
	}

	ok, err := c.rdb.SetNX(ctx, "scan:committed:"+sessionID, "1", ttl).Result()
	if err != nil {
		c.logger.Warn("Failed to set commit marker in Redis",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return true
	}
	return ok
}
