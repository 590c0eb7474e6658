package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	Host       string `env:"HOST,default=0.0.0.0"`
	Port       int    `env:"PORT,default=80"`
	HealthPort int    `env:"HEALTH_PORT,default=9090"`

	DatabaseURL       string        `env:"DATABASE_URL,required=true"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=100"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=1h"`

	AMQPURL           string        `env:"AMQP_URL,required=true"`
	EventsQueue       string        `env:"EVENTS_QUEUE,default=events"`
	PublishMaxElapsed time.Duration `env:"PUBLISH_MAX_ELAPSED,default=5s"`
	PublishMaxRetries int           `env:"PUBLISH_MAX_RETRIES,default=5"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL,default=5m"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=10s"`
	IdentityHeader string        `env:"IDENTITY_HEADER,default=X-User"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if cfg.Port <= 0 || cfg.HealthPort <= 0 {
		return nil, fmt.Errorf("config error: PORT and HEALTH_PORT must be positive")
	}
	if cfg.HealthPort == cfg.Port {
		return nil, fmt.Errorf("config error: HEALTH_PORT must differ from PORT (%d)", cfg.Port)
	}
	if cfg.PublishMaxRetries < 0 {
		return nil, fmt.Errorf("config error: PUBLISH_MAX_RETRIES must not be negative")
	}
	return &cfg, nil
}

// Addr is the listen address of the HTTP API.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) HealthAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.HealthPort))
}
