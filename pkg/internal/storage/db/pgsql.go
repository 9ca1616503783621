//go:build !no_postgres

package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

func createPostgresDialector(cfg *configs.DBConfig) (gorm.Dialector, error) {
	c := *cfg
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}

	return postgres.New(postgres.Config{DSN: c.GetDSN()}), nil
}

func init() {
	for _, t := range []configs.DBType{configs.PostgreSQL, configs.Postgres, configs.Pg} {
		RegisterDialectorFactory(t, createPostgresDialector)
	}
}
