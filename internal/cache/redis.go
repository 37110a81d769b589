package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// SummaryCache holds the per-tenant product list.
type SummaryCache interface {
	Get(ctx context.Context, orgID string, dst any) (bool, error)
	Set(ctx context.Context, orgID string, v any) error
	Invalidate(ctx context.Context, orgID string) error
}

const summaryKeyPrefix = "catalog:products:summary:"

func SummaryKey(orgID string) string {
	return summaryKeyPrefix + orgID
}

type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

// Get decodes the cached value into dst. A miss returns false with no error.
func (c *RedisSummaryCache) Get(ctx context.Context, orgID string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, SummaryKey(orgID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		// A payload we can no longer decode is as good as a miss.
		_ = c.client.Del(ctx, SummaryKey(orgID)).Err()
		return false, nil
	}
	return true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, orgID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, SummaryKey(orgID), data, c.ttl).Err()
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context, orgID string) error {
	return c.client.Del(ctx, SummaryKey(orgID)).Err()
}

// Nop never stores anything. Used when Redis is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any) error         { return nil }
func (Nop) Invalidate(context.Context, string) error       { return nil }
