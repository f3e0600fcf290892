package kv

import (
	"context"
	"errors"
	"time"

	pkgredis "github.com/novathreads/storefront-backend/pkg/redis"
)

type redisBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	StateKey(profile, key string) string
}

// RedisStore shares client state between devices of one profile. Keys are
// namespaced as <namespace>:state:<profile>:<key>.
type RedisStore struct {
	backend redisBackend
	profile string
	ttl     time.Duration
}

// NewRedisStore scopes a Redis client to profile. A zero ttl keeps values
// until they are deleted.
func NewRedisStore(client *pkgredis.Client, profile string, ttl time.Duration) *RedisStore {
	return newRedisStore(client, profile, ttl)
}

func newRedisStore(backend redisBackend, profile string, ttl time.Duration) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{backend: backend, profile: profile, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.backend.Get(ctx, r.backend.StateKey(r.profile, key))
	if errors.Is(err, pkgredis.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.backend.Set(ctx, r.backend.StateKey(r.profile, key), string(value), r.ttl)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.backend.Del(ctx, r.backend.StateKey(r.profile, key))
}
