package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// App modes.
const (
	ModeDev  = "dev"
	ModeProd = "prod"
	ModeTest = "test"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	HTTPPort     string `mapstructure:"http_port"`
	AppMode      string `mapstructure:"app_mode"`
	FiberPrefork bool   `mapstructure:"fiber_prefork"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// ClickHouse sink. An empty address selects the log-only sink.
	ClickHouseAddr        string        `mapstructure:"clickhouse_addr"`
	ClickHouseDatabase    string        `mapstructure:"clickhouse_database"`
	ClickHouseUsername    string        `mapstructure:"clickhouse_username"`
	ClickHousePassword    string        `mapstructure:"clickhouse_password"`
	ClickHouseDialTimeout time.Duration `mapstructure:"clickhouse_dial_timeout"`

	// Identity stores. An empty URL keeps both stores in memory.
	RedisURL     string        `mapstructure:"redis_url"`
	KVTimeout    time.Duration `mapstructure:"kv_timeout"`
	VisitTTL     time.Duration `mapstructure:"visit_ttl"`
	UserIDKey    string        `mapstructure:"user_id_key"`
	SessionIDKey string        `mapstructure:"session_id_key"`

	WorkerBufferSize int           `mapstructure:"worker_buffer_size"`
	WorkerBatchSize  int           `mapstructure:"worker_batch_size"`
	WorkerFlushEvery time.Duration `mapstructure:"worker_flush_every"`
	SinkTimeout      time.Duration `mapstructure:"sink_timeout"`

	BreakerFailureThreshold uint32        `mapstructure:"breaker_failure_threshold"`
	BreakerOpenTimeout      time.Duration `mapstructure:"breaker_open_timeout"`
}

var defaults = map[string]any{
	"http_port":                 ":8080",
	"app_mode":                  ModeDev,
	"fiber_prefork":             false,
	"log_level":                 "info",
	"log_format":                "json",
	"clickhouse_addr":           "",
	"clickhouse_database":       "default",
	"clickhouse_username":       "default",
	"clickhouse_password":       "",
	"clickhouse_dial_timeout":   5 * time.Second,
	"redis_url":                 "",
	"kv_timeout":                250 * time.Millisecond,
	"visit_ttl":                 30 * time.Minute,
	"user_id_key":               "analytics_user_id",
	"session_id_key":            "analytics_session_id",
	"worker_buffer_size":        1024,
	"worker_batch_size":         100,
	"worker_flush_every":        2 * time.Second,
	"sink_timeout":              5 * time.Second,
	"breaker_failure_threshold": 5,
	"breaker_open_timeout":      30 * time.Second,
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppMode = strings.ToLower(cfg.AppMode)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AppMode {
	case ModeDev, ModeProd, ModeTest:
	default:
		return fmt.Errorf("invalid APP_MODE: %s", c.AppMode)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %s", c.LogFormat)
	}

	if c.WorkerBufferSize <= 0 {
		return fmt.Errorf("WORKER_BUFFER_SIZE must be positive")
	}
	if c.WorkerBatchSize <= 0 {
		return fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.WorkerFlushEvery <= 0 {
		return fmt.Errorf("WORKER_FLUSH_EVERY must be positive")
	}
	if c.UserIDKey == "" || c.SessionIDKey == "" {
		return fmt.Errorf("USER_ID_KEY and SESSION_ID_KEY are required")
	}
	return nil
}

// SinkEnabled reports whether events are shipped to ClickHouse.
func (c *Config) SinkEnabled() bool {
	return c.ClickHouseAddr != ""
}

// IsProduction reports whether the service runs in prod mode.
func (c *Config) IsProduction() bool {
	return c.AppMode == ModeProd
}
