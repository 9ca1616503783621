package kv

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/yeisme/filevault/pkg/configs"
)

// MemoryKV 基于 sync.Map 的内存 KV 实现，TTL 在读取时惰性判断.
type MemoryKV struct {
	data sync.Map
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{now: time.Now}
}

func newMemoryKV(context.Context, *configs.KVConfig) (KVStore, error) {
	return NewMemoryKV(), nil
}

// load 返回未过期的值，过期键顺带删除.
func (m *MemoryKV) load(key string) ([]byte, bool) {
	value, exists := m.data.Load(key)
	if !exists {
		return nil, false
	}

	raw, _ := value.([]byte)

	val, live, err := open(raw, m.now())
	if err != nil {
		return nil, false
	}

	if !live {
		m.data.CompareAndDelete(key, value)

		return nil, false
	}

	return val, true
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := m.load(key)
	if !ok {
		return nil, ErrKeyNotFound
	}

	result := make([]byte, len(val))
	copy(result, val)

	return result, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	data, err := seal(data, expireAt(m.now(), ttl))
	if err != nil {
		return err
	}

	m.data.Store(key, data)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)

	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.load(key)

	return ok, nil
}

// Keys 获取匹配 glob 模式的键，空模式返回全部.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)

	m.data.Range(func(key, _ any) bool {
		k, ok := key.(string)
		if !ok {
			return true
		}

		if pattern != "" {
			if matched, err := path.Match(pattern, k); err != nil || !matched {
				return true
			}
		}

		if _, live := m.load(k); live {
			keys = append(keys, k)
		}

		return true
	})

	sort.Strings(keys)

	return keys, nil
}

// Ping 内存实现始终可用.
func (m *MemoryKV) Ping(context.Context) error {
	return nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeMemory, newMemoryKV)
}
