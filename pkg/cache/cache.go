// Package cache 提供基于键值存储的泛型缓存实现.
//
// 值以 JSON（sonic）编码后写入 kv.KVStore，支持 TTL；所有键带统一前缀，
// Clear 只清理本缓存写入的键.
//
// 基本用法:
//
//	c := cache.NewCache(mgr.KV, "fv:cache:")
//
//	err := cache.Set(ctx, c, "stats:u1", stats, time.Minute)
//	stats, err := cache.Get[types.FilesStats](ctx, c, "stats:u1")
//
//	// 并发的同键 GetOrSet 只会调用一次 getter
//	stats, err := cache.GetOrSet(ctx, c, "stats:u1", func(ctx context.Context) (types.FilesStats, error) {
//	    return svc.Stats(ctx, "u1")
//	}, time.Minute)
//
// 缓存未命中时 Get 返回 kv.ErrKeyNotFound；写缓存失败不影响 GetOrSet 的返回值.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/filevault/pkg/internal/storage/kv"
)

// ErrMiss 缓存未命中.
var ErrMiss = kv.ErrKeyNotFound

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
	group   singleflight.Group
}

// NewCache 创建一个新的缓存实例，prefix 会加在每个键之前.
func NewCache(kvStore kv.KVStore, prefix string) *Cache {
	return &Cache{
		kvStore: kvStore,
		prefix:  prefix,
	}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.key(key))
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.key(key))
}

// GetOrSet 获取缓存值，不存在时调用 getter 并写回；同键并发调用合并为一次.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func(ctx context.Context) (T, error), ttl time.Duration) (T, error) {
	var zero T

	value, err := Get[T](ctx, c, key)
	if err == nil {
		return value, nil
	}

	if !errors.Is(err, kv.ErrKeyNotFound) {
		// 存储异常时直接回源
		return getter(ctx)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if cached, err := Get[T](ctx, c, key); err == nil {
			return cached, nil
		}

		fresh, err := getter(ctx)
		if err != nil {
			return nil, err
		}

		_ = Set(ctx, c, key, fresh, ttl)

		return fresh, nil
	})
	if err != nil {
		return zero, err
	}

	return v.(T), nil
}

// Clear 删除本缓存前缀下的全部键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, c.prefix+"*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
