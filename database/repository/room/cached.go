package room

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"roombooking/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "room:"

// CachedRepository is a cache-aside wrapper keeping room lookups in Redis.
// Cache failures fall through to the underlying repository.
type CachedRepository struct {
	next   Repository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedRepository) GetByID(ctx context.Context, roomID string) (*models.Room, error) {
	key := cacheKeyPrefix + roomID

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var r models.Room
		if jsonErr := json.Unmarshal(data, &r); jsonErr == nil {
			return &r, nil
		}
		c.logger.Warn("Discarding malformed cached room", zap.String("roomID", roomID))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Room cache read failed", zap.String("roomID", roomID), zap.Error(err))
	}

	r, err := c.next.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(r); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("Room cache write failed", zap.String("roomID", roomID), zap.Error(err))
		}
	}
	return r, nil
}
