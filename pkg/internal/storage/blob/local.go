package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// LocalStore 把内容写到文件系统根目录下.
type LocalStore struct {
	fs   afero.Fs
	root string
}

// NewLocalStore 创建本地存储，根目录在首次写入时创建.
func NewLocalStore(fsys afero.Fs, root string) *LocalStore {
	return &LocalStore{fs: fsys, root: root}
}

// Root 返回根目录.
func (s *LocalStore) Root() string {
	return s.root
}

// Put 先写临时文件再重命名，读者不会看到写了一半的内容.
func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.root, dirPerm); err != nil {
		return fmt.Errorf("create blob root %s: %w", s.root, err)
	}

	target := filepath.Join(s.root, key)
	tmp := target + ".tmp-" + uuid.NewString()

	if err := afero.WriteFile(s.fs, tmp, data, filePerm); err != nil {
		_ = s.fs.Remove(tmp)

		return fmt.Errorf("write blob %s: %w", key, err)
	}

	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)

		return fmt.Errorf("commit blob %s: %w", key, err)
	}

	return nil
}

// Get 读取内容.
func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, ErrNotFound
	}

	data, err := afero.ReadFile(s.fs, filepath.Join(s.root, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}

	return data, nil
}

// Exists 判断文件是否存在.
func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, nil
	}

	ok, err := afero.Exists(s.fs, filepath.Join(s.root, key))
	if err != nil {
		return false, fmt.Errorf("stat blob %s: %w", key, err)
	}

	return ok, nil
}

// Ping 确认根目录可创建.
func (s *LocalStore) Ping(context.Context) error {
	return s.fs.MkdirAll(s.root, dirPerm)
}
