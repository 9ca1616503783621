// Package blob 保存文件内容与缩略图，键为不透明的唯一名称，直接位于根目录（或 bucket）下.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/yeisme/filevault/pkg/configs"
)

// ErrNotFound 键不存在.
var ErrNotFound = errors.New("blob: not found")

// Store Blob 存储接口.
type Store interface {
	// Put 写入（覆盖）key 对应的内容.
	Put(ctx context.Context, key string, data []byte) error
	// Get 读取内容，不存在时返回 ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists 判断 key 是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// Ping 检查后端可用性.
	Ping(ctx context.Context) error
}

// NewKey 生成新的 blob 键.
func NewKey() string {
	return uuid.NewString()
}

// DerivedKey 缩略图等派生内容的键：<key>_<suffix>.
func DerivedKey(key string, suffix int) string {
	return fmt.Sprintf("%s_%d", key, suffix)
}

// ValidateKey 键必须是根目录下的单层名称.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return fmt.Errorf("blob: invalid key %q", key)
	}

	return nil
}

// New 按配置创建 Blob 存储.
func New(ctx context.Context, cfg *configs.BlobConfig) (Store, error) {
	switch cfg.Type {
	case configs.BlobTypeLocal, "":
		return NewLocalStore(afero.NewOsFs(), cfg.Local.Root), nil
	case configs.BlobTypeS3:
		store, err := NewS3Store(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, fmt.Errorf("unsupported blob type: %s", cfg.Type)
	}
}
