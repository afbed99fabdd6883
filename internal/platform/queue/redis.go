package queue

import (
	"context"
	"time"

	"ffclash/internal/platform/config"
	"ffclash/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

// RDB backs both the notification queue and the settings cache.
var RDB *redis.Client

func ConnectRedis() {
	cfg := config.AppConfig
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatalf("Could not connect to Redis at %s: %v", cfg.RedisAddr, err)
	}

	RDB = client
	logger.WithField("addr", cfg.RedisAddr).Info("connected to Redis")
}

func CloseRedis() {
	if RDB == nil {
		return
	}
	if err := RDB.Close(); err != nil {
		logger.Errorf("closing redis: %v", err)
		return
	}
	logger.Info("redis connection closed")
}
