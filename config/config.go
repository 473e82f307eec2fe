package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	App     AppConfig     `mapstructure:"app"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`
}

type StoreConfig struct {
	Type     string         `mapstructure:"type" validate:"oneof=memory sqlite postgres redis"`
	Timeout  time.Duration  `mapstructure:"timeout" validate:"gte=0"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	URL    string `mapstructure:"url"`
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=postgres pgx"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type AppConfig struct {
	BaseURL           string `mapstructure:"base_url" validate:"required,url"`
	ShortCodeLength   int    `mapstructure:"short_code_length" validate:"gte=1,lte=64"`
	ShortCodeAlphabet string `mapstructure:"short_code_alphabet" validate:"required,alphanum,min=2"`
	MaxURLLength      int    `mapstructure:"max_url_length" validate:"gte=1"`
	MaxAttempts       int    `mapstructure:"max_attempts" validate:"gte=1"`
}

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gte=0"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Redis     RedisConfig   `mapstructure:"redis"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Path           string `mapstructure:"path"`
	Namespace      string `mapstructure:"namespace"`
	Subsystem      string `mapstructure:"subsystem"`
	CollectRuntime bool   `mapstructure:"collect_runtime"`
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tern/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("store.type", "memory")
	v.SetDefault("store.timeout", "5s")
	v.SetDefault("store.sqlite.path", "./data/tern.db")
	v.SetDefault("store.postgres.url", "")
	v.SetDefault("store.postgres.driver", "postgres")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key_prefix", "url")

	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("app.short_code_length", 6)
	v.SetDefault("app.short_code_alphabet", "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	v.SetDefault("app.max_url_length", 2048)
	v.SetDefault("app.max_attempts", 10)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.key_prefix", "cache:url")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "tern")
	v.SetDefault("metrics.subsystem", "shortener")
	v.SetDefault("metrics.collect_runtime", true)
}

// Validate checks the parts of the configuration the core relies on.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Store.Type {
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return errors.New("invalid configuration: store.sqlite.path is required")
		}
	case "postgres":
		if c.Store.Postgres.URL == "" {
			return errors.New("invalid configuration: store.postgres.url is required")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return errors.New("invalid configuration: store.redis.addr is required")
		}
	}

	if c.Cache.Enabled && c.Cache.Redis.Addr == "" {
		return errors.New("invalid configuration: cache.redis.addr is required when cache is enabled")
	}

	return nil
}

func (c *Config) GetDatabaseURL() string {
	switch c.Store.Type {
	case "sqlite":
		return c.Store.SQLite.Path
	case "postgres":
		return c.Store.Postgres.URL
	case "redis":
		return c.Store.Redis.Addr
	default:
		return ""
	}
}
