// Package database opens go-pg connections to the lobby store.
package database

import (
	"github.com/go-pg/pg/v10"
	_ "github.com/go-pg/pg/v10/orm"
	"github.com/sirupsen/logrus"

	"github.com/hybridboard/gametable-backend/platform/config"
)

// PostgreSQLConnection opens a connection using the DB_* configuration.
// Callers own closing it.
func PostgreSQLConnection() *pg.DB {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Error("configuration load failed, connecting with defaults")
	}
	return pg.Connect(&pg.Options{
		User:     cfg.DBUser,
		Addr:     cfg.DBAddr,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
	})
}
