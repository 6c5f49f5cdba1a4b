package core

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. It is a pure cache layer here — every
// durable entity (credentials, leagues, OAuth codes/tokens/state, rate-limit
// counters) lives in Postgres. Losing Redis degrades to cache misses, not
// data loss.
var Rdb *redis.Client

// ConnectRedis initialises the Redis client from the REDIS_URL env var.
func ConnectRedis() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Fatal("REDIS_URL must be set")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Unable to parse REDIS_URL: %v", err)
	}

	Rdb = redis.NewClient(opts)

	if err := Rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Unable to connect to Redis: %v", err)
	}

	log.Println("Successfully connected to Redis")
}

// GetCache attempts to retrieve and deserialize a value from Redis.
func GetCache(key string, target interface{}) bool {
	val, err := Rdb.Get(context.Background(), key).Result()
	if err != nil {
		return false
	}

	err = json.Unmarshal([]byte(val), target)
	return err == nil
}

// SetCache serializes and stores a value in Redis with an expiration.
func SetCache(key string, value interface{}, expiration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[Redis Error] Failed to marshal cache data for %s: %v", key, err)
		return
	}

	if err := Rdb.Set(context.Background(), key, data, expiration).Err(); err != nil {
		log.Printf("[Redis Error] Failed to set cache for %s: %v", key, err)
	}
}

// InvalidateCache deletes one or more cache keys, ignoring misses.
func InvalidateCache(keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := Rdb.Del(context.Background(), keys...).Err(); err != nil {
		log.Printf("[Redis Error] Failed to invalidate cache keys %v: %v", keys, err)
	}
}
