package cache

import (
	"github.com/gomodule/redigo/redis"
)

// Typed wrappers over the redis commands the lobby registry uses. Every
// helper takes the connection explicitly so callers control pooling.

func Del(key string, conn redis.Conn) error {
	_, err := conn.Do("DEL", key)
	return err
}

func RPUSH(key string, values []interface{}, conn redis.Conn) error {
	_, err := conn.Do("RPUSH", redis.Args{}.Add(key).AddFlat(values)...)
	return err
}

func LREM(key, val string, conn redis.Conn) error {
	_, err := conn.Do("LREM", key, 0, val)
	return err
}

func LLEN(key string, conn redis.Conn) (int, error) {
	return redis.Int(conn.Do("LLEN", key))
}

// LGET reads the whole list.
func LGET(key string, conn redis.Conn) ([]string, error) {
	return redis.Strings(conn.Do("LRANGE", key, 0, -1))
}
