package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	SES        SESConfig        `yaml:"ses"`
	Newsletter NewsletterConfig `yaml:"newsletter"`
	Feed       FeedConfig       `yaml:"feed"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the server host, honoring container environments.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis settings for send locks and stat caching.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

// SESConfig holds AWS SES API configuration.
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration.
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NewsletterConfig holds subscriber-admin behavior knobs.
type NewsletterConfig struct {
	// UndoExpirySeconds is the grace window during which a deleted
	// subscriber can be restored from the recently-deleted buffer.
	UndoExpirySeconds int `yaml:"undo_expiry_seconds"`
	// UndoSweepSeconds is how often expired buffer entries are purged.
	UndoSweepSeconds int `yaml:"undo_sweep_seconds"`
	// SearchDebounceMillis is the quiescence period before a typed search
	// term triggers a refetch.
	SearchDebounceMillis int `yaml:"search_debounce_millis"`
	// DefaultPageSize is the subscriber list page size.
	DefaultPageSize int `yaml:"default_page_size"`
	// SendLockTTLSeconds bounds how long a bulk send holds the dispatch lock.
	SendLockTTLSeconds int `yaml:"send_lock_ttl_seconds"`
	// SendConcurrency is the number of parallel per-recipient sends.
	SendConcurrency int `yaml:"send_concurrency"`
}

// UndoExpiry returns the undo grace window as a duration.
func (c NewsletterConfig) UndoExpiry() time.Duration {
	return time.Duration(c.UndoExpirySeconds) * time.Second
}

// UndoSweep returns the sweep interval as a duration.
func (c NewsletterConfig) UndoSweep() time.Duration {
	return time.Duration(c.UndoSweepSeconds) * time.Second
}

// SearchDebounce returns the search debounce delay as a duration.
func (c NewsletterConfig) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMillis) * time.Millisecond
}

// SendLockTTL returns the send lock TTL as a duration.
func (c NewsletterConfig) SendLockTTL() time.Duration {
	return time.Duration(c.SendLockTTLSeconds) * time.Second
}

// FeedConfig holds the label news feed importer settings.
type FeedConfig struct {
	URL      string `yaml:"url"`
	MaxItems int    `yaml:"max_items"`
	Enabled  bool   `yaml:"enabled"`
}

// Default returns a Config with production-sane defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8090},
		Database: DatabaseConfig{
			MaxOpenConns: 20,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{Addr: "127.0.0.1:6379"},
		SES:   SESConfig{Region: "us-east-1", TimeoutSeconds: 30},
		Newsletter: NewsletterConfig{
			UndoExpirySeconds:    30,
			UndoSweepSeconds:     5,
			SearchDebounceMillis: 300,
			DefaultPageSize:      25,
			SendLockTTLSeconds:   120,
			SendConcurrency:      8,
		},
		Feed: FeedConfig{MaxItems: 10},
	}
}

// Load reads configuration from a YAML file, applying defaults for any
// omitted fields. A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads the YAML config and then applies environment overrides.
// A .env file in the working directory is honored when present.
func LoadFromEnv(path string) (*Config, error) {
	godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("NEWSLETTER_FROM_EMAIL"); v != "" {
		cfg.SES.FromEmail = v
	}
	if v := os.Getenv("NEWS_FEED_URL"); v != "" {
		cfg.Feed.URL = v
		cfg.Feed.Enabled = true
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	return cfg, nil
}
