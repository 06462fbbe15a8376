package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "records.db?_foreign_keys=on&_busy_timeout=5000", cfg.Database.ConnectionString())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.App.Migrations)
}

func TestParsePostgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("MIGRATIONS", "true")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.True(t, cfg.App.Migrations)
	assert.Equal(t,
		"host=db port=6543 user=records password=records dbname=records sslmode=disable",
		cfg.Database.ConnectionString())
}

func TestDSNOverride(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://x:y@z/records")
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "postgres://x:y@z/records", cfg.Database.ConnectionString())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver", "DB_DRIVER", "mysql"},
		{"log level", "LOG_LEVEL", "loud"},
		{"log format", "LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
