package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	statusKeyPrefix = "savora:reminder:status:"
	statusTTL       = 10 * time.Minute
)

// StatusCache keeps recently read reminder statuses in Redis so the mobile
// client's status polling does not hit PostgreSQL on every tick. Entries are
// keyed per owner, so a hit carries the same ownership guarantee as the
// repository lookup it replaces. Entries expire on their own; the dispatcher
// overwrites them when a reminder reaches a terminal status.
type StatusCache struct {
	rdb *redis.Client
}

func NewStatusCache(rdb *redis.Client) *StatusCache {
	return &StatusCache{rdb: rdb}
}

func statusKey(userID, id uuid.UUID) string {
	return statusKeyPrefix + userID.String() + ":" + id.String()
}

// Get returns the cached status, or ErrNotFound on a cache miss
func (c *StatusCache) Get(ctx context.Context, userID, id uuid.UUID) (model.ReminderStatus, error) {
	val, err := c.rdb.Get(ctx, statusKey(userID, id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return model.ReminderStatus(val), nil
}

// Set stores the status with a TTL
func (c *StatusCache) Set(ctx context.Context, userID, id uuid.UUID, status model.ReminderStatus) error {
	return c.rdb.Set(ctx, statusKey(userID, id), string(status), statusTTL).Err()
}

// Invalidate drops the cached status, e.g. after a delete
func (c *StatusCache) Invalidate(ctx context.Context, userID, id uuid.UUID) error {
	return c.rdb.Del(ctx, statusKey(userID, id)).Err()
}
