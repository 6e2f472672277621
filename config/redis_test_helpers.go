package config

import "github.com/redis/go-redis/v9"

// SetRedisClientForTest injects a Redis client (typically a redismock client).
// Only tests should call it.
func SetRedisClientForTest(client *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = client
}

// ResetRedisClientForTest clears the shared Redis client.
func ResetRedisClientForTest() {
	SetRedisClientForTest(nil)
}
