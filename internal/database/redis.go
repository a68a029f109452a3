package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis returns a connected client, or nil when no address is
// configured. Callers treat a nil client as "rate limiting disabled".
func ConnectRedis(addr, password string, db int, logger *zap.SugaredLogger) (*redis.Client, error) {
	if addr == "" {
		logger.Warn("Redis not configured, rate limiting disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Errorf("Redis ping failed: %v", err)
		return nil, err
	}

	logger.Info("Redis connected successfully")
	return rdb, nil
}
