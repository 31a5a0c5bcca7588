// Package config loads catalog-selector settings from defaults, an
// optional YAML file, CATSEL_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/catalog-selector/pkg/catalog"
	"github.com/Sternrassler/catalog-selector/pkg/coordinator"
	"github.com/Sternrassler/catalog-selector/pkg/logging"
	"github.com/Sternrassler/catalog-selector/pkg/pagination"
	"github.com/Sternrassler/catalog-selector/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CATSEL_REDIS_ADDR.
const EnvPrefix = "CATSEL"

// DefaultUserAgent identifies the application to the upstream API.
const DefaultUserAgent = "catalog-selector (+https://github.com/Sternrassler/catalog-selector)"

// Config holds the resolved application configuration.
type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	View      ViewConfig      `mapstructure:"view"`
	Selector  SelectorConfig  `mapstructure:"selector"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
}

// CatalogConfig configures the remote collection.
type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	Fields         []string      `mapstructure:"fields"`
	RemotePageSize int           `mapstructure:"remote_page_size"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ViewConfig configures offset-to-page mapping.
type ViewConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// SelectorConfig bounds select-first-N walks.
type SelectorConfig struct {
	// MaxPages caps a walk; 0 means unlimited.
	MaxPages    int           `mapstructure:"max_pages"`
	PageTimeout time.Duration `mapstructure:"page_timeout"`
}

// RedisConfig enables the response cache and shared rate limit state.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig holds the remaining-request thresholds.
type RateLimitConfig struct {
	Critical int `mapstructure:"critical"`
	Warning  int `mapstructure:"warning"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	// File receives logs instead of stderr when set.
	File string `mapstructure:"file"`
}

// ServerConfig configures the HTTP session API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// flagKeys binds command-line flags to config keys.
var flagKeys = map[string]string{
	"base-url":   "catalog.base_url",
	"user-agent": "catalog.user_agent",
	"page-size":  "view.page_size",
	"max-pages":  "selector.max_pages",
	"redis":      "redis.enabled",
	"redis-addr": "redis.addr",
	"log-level":  "log.level",
	"log-pretty": "log.pretty",
	"log-file":   "log.file",
	"addr":       "server.addr",
}

// Load resolves the configuration. An empty path searches
// $XDG_CONFIG_HOME/catalog-selector and the working directory for
// config.yaml, and a missing file there is not an error. Flags may be nil;
// only flags the user actually set override other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDirectory())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", catalog.DefaultBaseURL)
	v.SetDefault("catalog.user_agent", DefaultUserAgent)
	v.SetDefault("catalog.fields", catalog.DefaultFields)
	v.SetDefault("catalog.remote_page_size", coordinator.DefaultPageSize)
	v.SetDefault("catalog.timeout", catalog.DefaultTimeout)
	v.SetDefault("view.page_size", coordinator.DefaultPageSize)
	v.SetDefault("selector.max_pages", 0)
	v.SetDefault("selector.page_timeout", pagination.DefaultConfig().PageTimeout)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.critical", ratelimit.DefaultThresholds().Critical)
	v.SetDefault("ratelimit.warning", ratelimit.DefaultThresholds().Warning)
	v.SetDefault("log.level", string(logging.LevelInfo))
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.file", "")
	v.SetDefault("server.addr", ":8080")
}

func configDirectory() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "catalog-selector")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "catalog-selector")
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if u, err := url.Parse(c.Catalog.BaseURL); err != nil || u.Host == "" {
		return fmt.Errorf("catalog.base_url is not a valid URL: %q", c.Catalog.BaseURL)
	}
	if c.Catalog.UserAgent == "" {
		return fmt.Errorf("catalog.user_agent is required")
	}
	if c.Catalog.RemotePageSize < 0 {
		return fmt.Errorf("catalog.remote_page_size must be >= 0 (got %d)", c.Catalog.RemotePageSize)
	}
	if c.View.PageSize < 1 {
		return fmt.Errorf("view.page_size must be >= 1 (got %d)", c.View.PageSize)
	}
	if c.Selector.MaxPages < 0 {
		return fmt.Errorf("selector.max_pages must be >= 0 (got %d)", c.Selector.MaxPages)
	}
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when redis is enabled")
		}
		if err := c.Thresholds().Validate(); err != nil {
			return fmt.Errorf("ratelimit: %w", err)
		}
	}
	return nil
}

// Thresholds returns the rate limit thresholds.
func (c *Config) Thresholds() ratelimit.Thresholds {
	return ratelimit.Thresholds{
		Critical: c.RateLimit.Critical,
		Warning:  c.RateLimit.Warning,
	}
}

// RedisOptions returns client options, or nil when Redis is disabled.
func (c *Config) RedisOptions() *redis.Options {
	if !c.Redis.Enabled {
		return nil
	}
	return &redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// ClientConfig builds the catalog client configuration. rdb may be nil.
func (c *Config) ClientConfig(rdb *redis.Client) catalog.Config {
	return catalog.Config{
		BaseURL:        c.Catalog.BaseURL,
		UserAgent:      c.Catalog.UserAgent,
		Fields:         c.Catalog.Fields,
		RemotePageSize: c.Catalog.RemotePageSize,
		Timeout:        c.Catalog.Timeout,
		Redis:          rdb,
		RateLimit:      c.Thresholds(),
	}
}

// WalkConfig builds the select-first-N walker configuration.
func (c *Config) WalkConfig() pagination.Config {
	return pagination.Config{
		MaxPages:    c.Selector.MaxPages,
		PageTimeout: c.Selector.PageTimeout,
	}
}

// LoggingConfig builds the logger configuration; Output is left to the
// caller.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}
