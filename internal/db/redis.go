package db

import (
	"github.com/Danielopol/Metrosocial/internal/config"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a client for the fan-out bridge, or nil when no
// address is configured. A nil client keeps the hub local-only.
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
