package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs per cache class
const (
	TTLListings = 30 * time.Second // browse results, refreshed often
	TTLListing  = 2 * time.Minute  // single listing detail
	TTLUser     = 5 * time.Minute  // user profiles
	TTLDefault  = 1 * time.Minute
)

// Key prefixes
const (
	PrefixListings = "listings:"
	PrefixListing  = "listing:"
	PrefixUser     = "user:"
)

// Service is the Redis cache facade. All operations degrade to no-ops
// when Redis is not configured.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetListings(ctx context.Context, query, category string, dest interface{}) error
	SetListings(ctx context.Context, query, category string, data interface{}) error
	InvalidateListings(ctx context.Context) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates the cache over the given client. A nil client is
// allowed and yields a disabled cache.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func listingsKey(query, category string) string {
	return PrefixListings + query + ":" + category
}

func (c *redisCache) GetListings(ctx context.Context, query, category string, dest interface{}) error {
	return c.Get(ctx, listingsKey(query, category), dest)
}

func (c *redisCache) SetListings(ctx context.Context, query, category string, data interface{}) error {
	return c.Set(ctx, listingsKey(query, category), data, TTLListings)
}

// InvalidateListings drops every cached browse result. Called after any
// listing create or delete; per-key invalidation is not worth the
// bookkeeping at this write rate.
func (c *redisCache) InvalidateListings(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixListings+"*")
}

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
