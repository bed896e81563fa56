package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/interaction-dashboard-api/pkg/errors"
)

// CacheRepositoryConfig bounds the Redis cache. Threshold is the maximum number
// of indexed keys; IndexKey names the sorted set that tracks write order.
type CacheRepositoryConfig struct {
	IndexKey  string
	Threshold int
	OnEvict   func(n int)
}

// CacheRepository stores JSON payloads in Redis and evicts the oldest writes
// once the number of keys exceeds the threshold.
type CacheRepository struct {
	client    *redis.Client
	logger    *zap.Logger
	indexKey  string
	threshold int
	onEvict   func(n int)
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger, cfg CacheRepositoryConfig) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IndexKey == "" {
		cfg.IndexKey = "dashboard:interactions:index"
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 200
	}
	return &CacheRepository{client: client, logger: logger, indexKey: cfg.IndexKey, threshold: cfg.Threshold, onEvict: cfg.OnEvict}
}

// Get retrieves and unmarshals the cached value into the provided destination.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCacheCorrupt.Code, appErrors.ErrCacheCorrupt.Status, fmt.Sprintf("unmarshal cache value for %s", key))
	}

	return nil
}

// Set marshals the value, stores it with the given TTL and records the write in
// the index. Index members older than the TTL are pruned before the threshold
// is enforced.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	now := time.Now()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, payload, ttl)
		pipe.ZAdd(ctx, r.indexKey, redis.Z{Score: float64(now.UnixMilli()), Member: key})
		if ttl > 0 {
			cutoff := now.Add(-ttl).UnixMilli()
			pipe.ZRemRangeByScore(ctx, r.indexKey, "-inf", "("+strconv.FormatInt(cutoff, 10))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return r.enforceThreshold(ctx)
}

func (r *CacheRepository) enforceThreshold(ctx context.Context) error {
	count, err := r.client.ZCard(ctx, r.indexKey).Result()
	if err != nil {
		return fmt.Errorf("redis zcard %s: %w", r.indexKey, err)
	}
	overflow := count - int64(r.threshold)
	if overflow <= 0 {
		return nil
	}

	popped, err := r.client.ZPopMin(ctx, r.indexKey, overflow).Result()
	if err != nil {
		return fmt.Errorf("redis zpopmin %s: %w", r.indexKey, err)
	}
	keys := make([]string, 0, len(popped))
	for _, member := range popped {
		if key, ok := member.Member.(string); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis evict %d keys: %w", len(keys), err)
	}
	r.logger.Debug("cache entries evicted", zap.Int("count", len(keys)), zap.Int("threshold", r.threshold))
	if r.onEvict != nil {
		r.onEvict(len(keys))
	}
	return nil
}

// Len reports the number of indexed keys.
func (r *CacheRepository) Len(ctx context.Context) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	return r.client.ZCard(ctx, r.indexKey).Result()
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
