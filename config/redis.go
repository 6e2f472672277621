package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	redisClient *redis.Client
	redisMu     sync.RWMutex
)

// RedisEnabled reports whether REDIS_ENABLED is set to "true". Redis is
// optional: sessions fall back to the database and rate limiting is skipped.
func RedisEnabled() bool {
	v, _ := strconv.ParseBool(os.Getenv("REDIS_ENABLED"))
	return v
}

func redisOptions() *redis.Options {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if v, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		dbNum = v
	}
	return &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       dbNum,
	}
}

// ConnectRedis creates the shared Redis client when Redis is enabled and reachable.
// It returns (nil, nil) when Redis is disabled or APPENV is "test".
func ConnectRedis() (*redis.Client, error) {
	if !RedisEnabled() || IsTestEnv() {
		return nil, nil
	}

	redisMu.Lock()
	defer redisMu.Unlock()
	if redisClient != nil {
		return redisClient, nil
	}

	opts := redisOptions()
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	redisClient = rdb
	Logger().Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return redisClient, nil
}

// GetRedisClient returns the shared Redis client, nil when not connected.
func GetRedisClient() *redis.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return redisClient
}
