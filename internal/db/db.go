// Package db opens the GORM connection and manages schema and seed data.
package db

import (
	"fmt"
	"time"

	"github.com/diewo77/go-records/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

// Connect opens the configured database, retrying while the server comes up.
func Connect(cfg config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{Logger: gormLogger(cfg, log)}

	var conn *gorm.DB
	for i := 0; i < connectAttempts; i++ {
		conn, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.WithError(err).Warnf("database connection attempt %d/%d failed", i+1, connectAttempts)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows one writer; serialising connections avoids SQLITE_BUSY
		// inside transactions.
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Ping(conn); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"driver": cfg.Driver,
		"dsn":    MaskDSN(cfg.ConnectionString()),
	}).Info("database connected")
	return conn, nil
}

// gormLogger routes GORM's SQL and slow-query lines through logrus so they
// share its formatter and file sink.
func gormLogger(cfg config.DatabaseConfig, log *logrus.Logger) logger.Interface {
	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	return logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Ping runs a trivial query against the database.
func Ping(conn *gorm.DB) error {
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}
	return nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.ConnectionString()), nil
	case config.DriverPostgres:
		return postgres.Open(NormalizeDSN(cfg.ConnectionString())), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
