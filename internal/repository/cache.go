package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/podomarket/storefront-service/internal/config"
	"github.com/podomarket/storefront-service/internal/models"
)

const (
	cartKeyPrefix   = "cart:"
	recentKeyPrefix = "recent:"
	defaultCacheTTL = 30 * time.Minute
	recentMaxItems  = 20
)

// RedisCartCache holds each user's cart working copy between requests.
// A missing key means the next read must reconcile with the commerce
// backend.
type RedisCartCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

// NewRedisCartCache creates a Redis-backed cart cache.
func NewRedisCartCache(cfg config.RedisConfig, logger *logrus.Entry) *RedisCartCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisCartCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get retrieves a user's cached cart. A cache miss returns (nil, false,
// nil).
func (c *RedisCartCache) Get(ctx context.Context, userID string) ([]models.CartItem, bool, error) {
	key := cartKeyPrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.WithFields(logrus.Fields{"user_id": userID}).Debug("cart cache miss")
		return nil, false, nil
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("cart cache get error")
		return nil, false, err
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// Set stores a user's cart working copy.
func (c *RedisCartCache) Set(ctx context.Context, userID string, items []models.CartItem) error {
	key := cartKeyPrefix + userID

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("cart cache set error")
		return err
	}
	return nil
}

// Delete drops a user's cached cart, forcing the next read to
// reconcile with the backend.
func (c *RedisCartCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, cartKeyPrefix+userID).Err()
}

// Close releases the Redis connection.
func (c *RedisCartCache) Close() error {
	return c.client.Close()
}

// Client exposes the underlying connection for stores that share it.
func (c *RedisCartCache) Client() *redis.Client {
	return c.client
}

// RedisRecentStore keeps each user's recently viewed product ids, newest
// first, capped at recentMaxItems.
type RedisRecentStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRecentStore creates the recently-viewed store on an existing
// connection.
func NewRedisRecentStore(client *redis.Client, ttl time.Duration) *RedisRecentStore {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &RedisRecentStore{client: client, ttl: ttl}
}

// Push records a viewed product, deduplicating and trimming the list.
func (s *RedisRecentStore) Push(ctx context.Context, userID, productID string) error {
	key := recentKeyPrefix + userID
	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, key, 0, productID)
	pipe.LPush(ctx, key, productID)
	pipe.LTrim(ctx, key, 0, recentMaxItems-1)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the recently viewed product ids, newest first.
func (s *RedisRecentStore) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.LRange(ctx, recentKeyPrefix+userID, 0, recentMaxItems-1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return ids, err
}

// Clear drops the user's recently viewed list.
func (s *RedisRecentStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, recentKeyPrefix+userID).Err()
}
