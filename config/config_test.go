package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "PORT", "DB_DRIVER", "DB_DSN", "DB_USER", "DB_PASS", "DB_HOST", "DB_PORT", "DB_NAME",
	"JWT_SECRET", "TOKEN_TTL", "APP_TIMEZONE", "DEFAULT_BOOKING_DURATION_MIN", "CANCEL_LEAD_TIME",
	"WHATSAPP_NUMBER", "ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL", "RABBITMQ_URL", "SWEEP_INTERVAL",
	"ADMIN_EMAIL", "ADMIN_PASSWORD",
}

func clearEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/restaurant?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DBDSN)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 120, cfg.DefaultDuration)
	assert.Equal(t, 3*time.Hour, cfg.CancelLeadTime)
	assert.Equal(t, "Asia/Jakarta", cfg.Location.String())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASS", "pw")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_RPS", "0")
	t.Setenv("CANCEL_LEAD_TIME", "90m")
	t.Setenv("DEFAULT_BOOKING_DURATION_MIN", "not-a-number")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "host=db user=root password=pw dbname=restaurant port=5432 sslmode=disable TimeZone=UTC", cfg.DBDSN)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Zero(t, cfg.RateLimitRPS)
	assert.Equal(t, 90*time.Minute, cfg.CancelLeadTime)
	assert.Equal(t, 120, cfg.DefaultDuration)
}

func TestInitDB(t *testing.T) {
	_, err := InitDB(&Config{DBDriver: "oracle"})
	assert.Error(t, err)

	db, err := InitDB(&Config{DBDriver: "sqlite", DBDSN: "file::memory:"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	_ = sqlDB.Close()
}

func TestNewRedisClient_Disabled(t *testing.T) {
	assert.Nil(t, NewRedisClient(&Config{}))
}
