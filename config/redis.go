package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

// NewRedisClient connects to REDIS_ADDR. It returns nil when Redis is not
// configured or unreachable; callers then run without the response cache.
func NewRedisClient(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.ErrorLogger.Printf("Redis unavailable at %s, response cache disabled: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return nil
	}
	utils.InfoLogger.Printf("Connected to Redis at %s", cfg.RedisAddr)
	return client
}
