//go:build !no_sqlite && cgo

package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

// mattn/go-sqlite3 以 _busy_timeout 参数设置等待写锁的时间.
func createSQLiteDialector(cfg *configs.DBConfig) (gorm.Dialector, error) {
	path, err := sqliteFile(cfg)
	if err != nil {
		return nil, err
	}

	return sqlite.Open(path + "?_busy_timeout=" + sqliteBusyTimeoutMS), nil
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
