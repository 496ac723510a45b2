package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT     JWTConfig
	Cookie  CookieConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Gateway GatewayConfig
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,  default=15m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL, default=720h"`
	// DenylistFloor is the minimum TTL for denylist markers, guarding
	// against clock skew between issuing and validating processes.
	DenylistFloor time.Duration `env:"JWT_DENYLIST_FLOOR, default=5m"`
}

type CookieConfig struct {
	AccessName  string `env:"ACCESS_COOKIE_NAME,  default=access_token_cookie"`
	RefreshName string `env:"REFRESH_COOKIE_NAME, default=refresh_token_cookie"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type GatewayConfig struct {
	Port         string `env:"GATEWAY_PORT,  default=8000"`
	AuthUpstream string `env:"AUTH_UPSTREAM, default=http://localhost:8080"`
}

// Load reads configuration from environment variables using
// go-envconfig. The resulting struct is constructed once at startup
// and passed by reference into each component's constructor.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
