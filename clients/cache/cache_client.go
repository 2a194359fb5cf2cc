package cache

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache TTLs per key family.
const (
	StockDetailsTTL = 5 * time.Minute
	StockNewsTTL    = 60 * time.Minute
	NewsArticlesTTL = 180 * time.Minute
	TrendingTTL     = 120 * time.Minute
	BriefingTTL     = 20 * time.Minute
	AdvisoryTTL     = 60 * time.Minute
)

// Store is a best-effort key/value layer holding JSON-serialized values.
// Implementations never surface transport errors: a failed read is a miss,
// a failed write is a no-op. Callers must not treat the cache as
// reliability-critical.
type Store interface {
	// Get unmarshals the cached value into dest and reports whether a
	// usable value was found. Deserialization failure counts as a miss.
	Get(ctx context.Context, key string, dest interface{}) bool
	// Set marshals value under key with the given TTL and reports success.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool
	// Delete removes key and reports success.
	Delete(ctx context.Context, key string) bool
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis instance configured via REDIS_ADDR,
// REDIS_USERNAME and REDIS_PASSWORD.
func NewRedisStore() Store {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: os.Getenv("REDIS_USERNAME"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return &redisStore{client: client}
}

func (r *redisStore) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		zap.L().Warn("Redis get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		zap.L().Warn("Discarding unparseable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *redisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		zap.L().Warn("Cache value not serializable", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		zap.L().Warn("Redis set failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *redisStore) Delete(ctx context.Context, key string) bool {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		zap.L().Warn("Redis delete failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}
