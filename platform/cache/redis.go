// Package cache wraps the redis connection used by the lobby registry.
package cache

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/hybridboard/gametable-backend/platform/config"
)

// CreateRedisPool builds the shared connection pool from the typed
// configuration. REDIS_URL is a host:port address.
func CreateRedisPool() (*redis.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 60 * time.Second,
		Dial:        func() (redis.Conn, error) { return redis.Dial("tcp", cfg.RedisURL) },
	}, nil
}

// CreateRedisConnection dials a single connection outside the pool, for
// request-scoped lobby reads.
func CreateRedisConnection() (redis.Conn, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return redis.Dial("tcp", cfg.RedisURL)
}
