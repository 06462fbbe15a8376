package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/go-records/internal/config"
	"github.com/diewo77/go-records/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate brings the schema up to date. SQL migrations run when requested on
// postgres; otherwise GORM AutoMigrate is used.
func Migrate(conn *gorm.DB, cfg *config.Config, log *logrus.Logger) error {
	if cfg.App.Migrations && cfg.Database.Driver == config.DriverPostgres {
		log.Info("running SQL migrations")
		return runSQLMigrations(ToURLDSN(NormalizeDSN(cfg.Database.ConnectionString())))
	}
	if cfg.App.Migrations {
		log.Warnf("SQL migrations are only shipped for postgres; using AutoMigrate on %s", cfg.Database.Driver)
	}
	return AutoMigrate(conn)
}

// AutoMigrate creates or updates the tables of every model.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"clients", "people"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func runSQLMigrations(dsn string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("initialising migrate: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
