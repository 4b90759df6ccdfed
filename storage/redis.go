package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisCache is a thin key/value layer over a shared Redis client. Faults
// are absorbed: a failed Get reports the key as absent and a failed Delete
// is logged and dropped, so callers never mistake a cache outage for
// missing data in the durable store. The wrapped client is safe for
// unsynchronized concurrent use by all handlers.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps the provided client. A nil client yields a cache that
// always misses, which keeps the read path functional without Redis.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the raw value for key, or ok=false when the key is absent or
// the cache is unreachable.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if r == nil || r.client == nil {
		return nil, false
	}
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("key", key).Debug("cache get failed")
		}
		return nil, false
	}
	return data, true
}

// Set overwrites key unconditionally. Last writer wins.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if r == nil || r.client == nil || ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Debug("cache set failed")
	}
}

// Delete removes the given keys. Deleting an absent key succeeds silently.
// A transport failure leaves the entries in place until their TTL expires.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) {
	if r == nil || r.client == nil || len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.WithError(err).WithField("keys", keys).Warn("cache invalidation failed; entries expire by TTL")
	}
}

// DeleteByPrefix removes every key sharing prefix. Best effort and not
// atomic: a concurrent Get may still observe an entry the scan has not
// reached yet.
func (r *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	if r == nil || r.client == nil || prefix == "" {
		return
	}
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.WithError(err).WithField("key", iter.Val()).Debug("cache prefix delete failed")
		}
	}
	if err := iter.Err(); err != nil {
		log.WithError(err).WithField("prefix", prefix).Debug("cache scan failed")
	}
}
