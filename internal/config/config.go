package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	GoEnv    string `mapstructure:"GO_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// STORE_DRIVER is "postgres" or "memory".
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DatabaseURL string `mapstructure:"DB_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	PresenceHeartbeat  time.Duration `mapstructure:"PRESENCE_HEARTBEAT"`
	PresenceStaleAfter time.Duration `mapstructure:"PRESENCE_STALE_AFTER"`

	// Messages per minute per user on the send endpoints.
	ChatRatePerMin int `mapstructure:"CHAT_RATE_PER_MIN"`

	AsynqConcurrency int    `mapstructure:"ASYNQ_CONCURRENCY"`
	AsynqQueues      string `mapstructure:"ASYNQ_QUEUES"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var defaults = map[string]any{
	"PORT":                 "8080",
	"GO_ENV":               "development",
	"LOG_LEVEL":            "info",
	"STORE_DRIVER":         DriverPostgres,
	"DB_URL":               "",
	"REDIS_URL":            "",
	"JWT_SECRET":           "",
	"FRONTEND_URL":         "http://localhost:5173",
	"PRESENCE_HEARTBEAT":   "30s",
	"PRESENCE_STALE_AFTER": "45s",
	"CHAT_RATE_PER_MIN":    30,
	"ASYNQ_CONCURRENCY":    10,
	"ASYNQ_QUEUES":         "chat=5,default=1",
}

// Load reads configuration from the environment, with envFile (usually
// ".env") as an optional lower-priority source.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DB_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.PresenceHeartbeat <= 0 {
		return errors.New("config: PRESENCE_HEARTBEAT must be positive")
	}
	if c.PresenceStaleAfter <= c.PresenceHeartbeat {
		return errors.New("config: PRESENCE_STALE_AFTER must exceed PRESENCE_HEARTBEAT")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required in production")
	}
	if c.ChatRatePerMin <= 0 {
		c.ChatRatePerMin = defaults["CHAT_RATE_PER_MIN"].(int)
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.GoEnv == "production" }
