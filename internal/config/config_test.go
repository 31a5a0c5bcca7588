package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/catalog-selector/pkg/catalog"
	"github.com/spf13/pflag"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Catalog.BaseURL != catalog.DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.Catalog.BaseURL)
	}
	if cfg.View.PageSize != 12 || cfg.Catalog.RemotePageSize != 12 {
		t.Errorf("page sizes = %d/%d, want 12/12", cfg.View.PageSize, cfg.Catalog.RemotePageSize)
	}
	if cfg.Catalog.Timeout != catalog.DefaultTimeout {
		t.Errorf("Timeout = %v", cfg.Catalog.Timeout)
	}
	if !slices.Equal(cfg.Catalog.Fields, catalog.DefaultFields) {
		t.Errorf("Fields = %v", cfg.Catalog.Fields)
	}
	if cfg.Redis.Enabled {
		t.Error("redis should be disabled by default")
	}
	if cfg.RedisOptions() != nil {
		t.Error("RedisOptions should be nil when disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
catalog:
  base_url: http://localhost:9000/records
  timeout: 5s
  fields: [id, title]
view:
  page_size: 20
redis:
  enabled: true
  addr: redis:6379
  db: 3
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Catalog.BaseURL != "http://localhost:9000/records" {
		t.Errorf("BaseURL = %q", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Catalog.Timeout)
	}
	if !slices.Equal(cfg.Catalog.Fields, []string{"id", "title"}) {
		t.Errorf("Fields = %v", cfg.Catalog.Fields)
	}
	if cfg.View.PageSize != 20 {
		t.Errorf("PageSize = %d", cfg.View.PageSize)
	}

	opts := cfg.RedisOptions()
	if opts == nil || opts.Addr != "redis:6379" || opts.DB != 3 {
		t.Errorf("RedisOptions = %+v", opts)
	}
	if cfg.LoggingConfig().Level != "debug" {
		t.Errorf("log level = %q", cfg.LoggingConfig().Level)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CATSEL_CATALOG_USER_AGENT", "EnvAgent/2.0")
	t.Setenv("CATSEL_VIEW_PAGE_SIZE", "24")
	t.Setenv("CATSEL_REDIS_ENABLED", "true")
	t.Setenv("CATSEL_SELECTOR_MAX_PAGES", "50")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Catalog.UserAgent != "EnvAgent/2.0" {
		t.Errorf("UserAgent = %q", cfg.Catalog.UserAgent)
	}
	if cfg.View.PageSize != 24 {
		t.Errorf("PageSize = %d", cfg.View.PageSize)
	}
	if !cfg.Redis.Enabled {
		t.Error("redis should be enabled by env")
	}
	if cfg.WalkConfig().MaxPages != 50 {
		t.Errorf("MaxPages = %d", cfg.WalkConfig().MaxPages)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CATSEL_LOG_LEVEL", "warn")
	t.Setenv("CATSEL_SERVER_ADDR", ":7000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("addr", ":8080", "")
	if err := flags.Parse([]string{"--log-level=debug"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want flag value", cfg.Log.Level)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, unset flag should not override env", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:     "empty base url",
			mutate:   func(c *Config) { c.Catalog.BaseURL = "" },
			errorMsg: "catalog.base_url is required",
		},
		{
			name:     "relative base url",
			mutate:   func(c *Config) { c.Catalog.BaseURL = "/artworks" },
			errorMsg: "not a valid URL",
		},
		{
			name:     "empty user agent",
			mutate:   func(c *Config) { c.Catalog.UserAgent = "" },
			errorMsg: "catalog.user_agent is required",
		},
		{
			name:     "zero page size",
			mutate:   func(c *Config) { c.View.PageSize = 0 },
			errorMsg: "view.page_size must be >= 1",
		},
		{
			name:     "negative max pages",
			mutate:   func(c *Config) { c.Selector.MaxPages = -1 },
			errorMsg: "selector.max_pages",
		},
		{
			name: "bad thresholds with redis",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.RateLimit.Critical = 30
			},
			errorMsg: "ratelimit",
		},
		{
			name: "bad thresholds ignored without redis",
			mutate: func(c *Config) {
				c.RateLimit.Critical = 30
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			cfg, err := Load("", nil)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.errorMsg)
			}
		})
	}
}

func TestClientConfig(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatal(err)
	}

	cc := cfg.ClientConfig(nil)
	if cc.BaseURL != cfg.Catalog.BaseURL || cc.UserAgent != cfg.Catalog.UserAgent {
		t.Errorf("ClientConfig = %+v", cc)
	}
	if cc.RateLimit.Warning != cfg.RateLimit.Warning {
		t.Errorf("thresholds not carried over")
	}
	if _, err := catalog.New(cc); err != nil {
		t.Errorf("catalog.New rejected default config: %v", err)
	}
}
