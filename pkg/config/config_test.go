package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "backoffice", cfg.DB.DBName)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxFileSize)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "1024")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	assert.Equal(t, 2, cfg.JWT.ExpirationHours)
	assert.Equal(t, int64(1024), cfg.Upload.MaxFileSize)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_HOURS", "soon")
	t.Setenv("DB_CONN_MAX_LIFETIME", "forever")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, time.Hour, cfg.DB.ConnMaxLifetime)
}

func TestGetDSN(t *testing.T) {
	c := DBConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		DBName:   "backoffice",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=backoffice sslmode=disable",
		c.GetDSN())
}
