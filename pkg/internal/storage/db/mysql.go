//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

// mysqlIndexedStringSize utf8mb4 下单列索引上限 767 字节对应的字符数.
const mysqlIndexedStringSize = 191

func createMySQLDialector(cfg *configs.DBConfig) (gorm.Dialector, error) {
	return mysql.New(mysql.Config{
		DSN:               cfg.GetDSN(),
		DefaultStringSize: mysqlIndexedStringSize,
	}), nil
}

func init() {
	RegisterDialectorFactory(configs.MySQL, createMySQLDialector)
	RegisterDialectorFactory(configs.MariaDB, createMySQLDialector)
}
