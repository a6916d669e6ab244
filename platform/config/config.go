// Package config loads process configuration from the environment. A
// .env file is honored when present.
package config

import (
	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":4101"`
	SocketAddr    string `env:"SOCKET_ADDR" envDefault:":8000"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
	JWTSecret     string `env:"JWT_SECRET" envDefault:"secret"`

	DBUser     string `env:"DB_USER"`
	DBAddr     string `env:"DB_ADDR"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`

	RedisURL string `env:"REDIS_URL" envDefault:"localhost:6379"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
