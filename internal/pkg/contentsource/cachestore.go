package contentsource

import (
	"context"
	"time"

	"github.com/verbumapp/verbum/internal/pkg/cache"
)

// RedisKV adapts the application cache to the loader's KV interface. Keys are
// namespaced per content source.
type RedisKV struct {
	prefix string
}

func NewRedisKV(prefix string) *RedisKV {
	return &RedisKV{prefix: prefix}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	value, err := cache.Get(r.prefix + key)
	if err != nil {
		if cache.IsMiss(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_ = ctx
	return cache.Set(r.prefix+key, value, ttl)
}
