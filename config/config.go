package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-reservation/utils"
)

const devJWTSecret = "dev-secret-change-me"

// Config holds every runtime setting of the service. Values come from the
// environment (optionally seeded from .env by main).
type Config struct {
	Env  string
	Port string

	DBDriver string
	DBDSN    string
	DBUser   string
	DBPass   string
	DBHost   string
	DBPort   string
	DBName   string

	JWTSecret string
	TokenTTL  time.Duration

	Location        *time.Location
	DefaultDuration int
	CancelLeadTime  time.Duration
	WhatsAppNumber  string

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RabbitMQURL   string
	SweepInterval time.Duration

	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	cfg := &Config{
		Env:  getEnvOrDefault("APP_ENV", "development"),
		Port: getEnvOrDefault("PORT", "8080"),

		DBDriver: strings.ToLower(getEnvOrDefault("DB_DRIVER", "mysql")),
		DBDSN:    os.Getenv("DB_DSN"),
		DBUser:   getEnvOrDefault("DB_USER", "root"),
		DBPass:   os.Getenv("DB_PASS"),
		DBHost:   getEnvOrDefault("DB_HOST", "127.0.0.1"),
		DBPort:   os.Getenv("DB_PORT"),
		DBName:   getEnvOrDefault("DB_NAME", "restaurant"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  envDur("TOKEN_TTL", 24*time.Hour),

		DefaultDuration: envInt("DEFAULT_BOOKING_DURATION_MIN", 120),
		CancelLeadTime:  envDur("CANCEL_LEAD_TIME", 3*time.Hour),
		WhatsAppNumber:  os.Getenv("WHATSAPP_NUMBER"),

		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		CacheTTL:      envDur("CACHE_TTL", 60*time.Second),

		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		SweepInterval: envDur("SWEEP_INTERVAL", 5*time.Minute),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		utils.InfoLogger.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}

	tz := getEnvOrDefault("APP_TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		utils.InfoLogger.Warnf("unknown APP_TIMEZONE %q, falling back to UTC", tz)
		loc = time.UTC
	}
	cfg.Location = loc

	if cfg.DBDSN == "" {
		cfg.DBDSN = cfg.buildDSN()
	}
	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) buildDSN() string {
	switch c.DBDriver {
	case "postgres":
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPass, c.DBName, port)
	case "sqlite":
		return c.DBName + ".db"
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPass, c.DBHost, port, c.DBName)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
