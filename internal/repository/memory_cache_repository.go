package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	appErrors "github.com/noah-isme/interaction-dashboard-api/pkg/errors"
)

// MemoryCacheRepository is a process-local bounded LRU used when Redis is not
// configured or unreachable. Entries expire after the TTL given at
// construction; the per-call TTL passed to Set is not honoured individually.
// Contents are lost on restart.
type MemoryCacheRepository struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCacheRepository constructs an LRU store holding at most size keys.
// onEvict, when set, is called once per removed entry.
func NewMemoryCacheRepository(size int, ttl time.Duration, onEvict func(n int)) *MemoryCacheRepository {
	if size <= 0 {
		size = 200
	}
	var callback expirable.EvictCallback[string, []byte]
	if onEvict != nil {
		callback = func(string, []byte) { onEvict(1) }
	}
	return &MemoryCacheRepository{lru: expirable.NewLRU[string, []byte](size, callback, ttl)}
}

// Get unmarshals the stored payload into dest.
func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := r.lru.Get(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCacheCorrupt.Code, appErrors.ErrCacheCorrupt.Status, fmt.Sprintf("unmarshal cache value for %s", key))
	}
	return nil
}

// Set stores the JSON encoding of value.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	r.lru.Add(key, payload)
	return nil
}

// Len reports the number of live entries.
func (r *MemoryCacheRepository) Len(context.Context) (int64, error) {
	return int64(r.lru.Len()), nil
}
