//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

// 纯 Go 版本（modernc）通过 _pragma 参数设置 busy_timeout.
func createSQLiteDialector(cfg *configs.DBConfig) (gorm.Dialector, error) {
	path, err := sqliteFile(cfg)
	if err != nil {
		return nil, err
	}

	return sqlite.Open(path + "?_pragma=busy_timeout(" + sqliteBusyTimeoutMS + ")"), nil
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
