//go:build !no_sqlite

package db

import (
	"fmt"
	"os"

	"github.com/yeisme/filevault/pkg/configs"
)

// sqliteBusyTimeoutMS 单写者模型下并发上传等待写锁的时间.
const sqliteBusyTimeoutMS = "5000"

// sqliteFile 返回数据库文件路径并确保 DataDir 存在.
func sqliteFile(cfg *configs.DBConfig) (string, error) {
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return "", fmt.Errorf("create sqlite data dir: %w", err)
		}
	}

	return cfg.GetDSN(), nil
}
