package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quantedge/quantedge/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090
  cors_origins: ["http://localhost:5173"]

storage:
  type: localfs
  path: "/tmp/quantedge/settings"

universe:
  - symbol: AAPL
    name: Apple
  - symbol: MSFT
    name: Microsoft

backtest:
  url: "http://localhost:5001"
  timeout: 30s
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Type != "localfs" {
		t.Errorf("expected localfs, got %s", cfg.Storage.Type)
	}
	if len(cfg.Universe) != 2 || cfg.Universe[1].Symbol != "MSFT" {
		t.Errorf("unexpected universe: %+v", cfg.Universe)
	}
	if cfg.Backtest.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.Backtest.Timeout)
	}
	if len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("expected one cors origin, got %v", cfg.Server.CORSOrigins)
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 8081\n"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.Key != "simulationSettings" {
		t.Errorf("expected default storage key, got %q", cfg.Storage.Key)
	}
	if cfg.Server.MaxJobs != 100 {
		t.Errorf("expected default max_jobs, got %d", cfg.Server.MaxJobs)
	}
	if cfg.Storage.Type != "localfs" || cfg.Storage.Path != DefaultStoragePath() {
		t.Errorf("expected default localfs storage, got %+v", cfg.Storage)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level, got %q", cfg.Log.Level)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("expected default session ttl, got %s", cfg.Auth.SessionTTL)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_QE_API_KEY", "from-env")

	cfg, err := Load(writeConfig(t, "server:\n  api_key: \"${TEST_QE_API_KEY}\"\n"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.APIKey != "from-env" {
		t.Errorf("expected expanded api key, got %q", cfg.Server.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Type != "localfs" {
		t.Errorf("expected durable localfs storage, got %s", cfg.Storage.Type)
	}
	if cfg.Storage.Path != DefaultStoragePath() || cfg.Storage.Path == "" {
		t.Errorf("expected default storage path, got %q", cfg.Storage.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config { return *Defaults() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{"valid config", func(c *Config) {}, nil},
		{"invalid port - zero", func(c *Config) { c.Server.Port = 0 }, core.ErrConfigInvalid},
		{"invalid port - too high", func(c *Config) { c.Server.Port = 70000 }, core.ErrConfigInvalid},
		{"zero max jobs", func(c *Config) { c.Server.MaxJobs = 0 }, core.ErrConfigInvalid},
		{"localfs without path", func(c *Config) { c.Storage.Path = "" }, core.ErrConfigMissing},
		{"explicit memory", func(c *Config) { c.Storage.Type = "memory" }, nil},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }, core.ErrConfigMissing},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = "postgres" }, core.ErrConfigMissing},
		{"unknown storage", func(c *Config) { c.Storage.Type = "redis" }, core.ErrConfigInvalid},
		{"relative backtest url", func(c *Config) { c.Backtest.URL = "backtest/run" }, core.ErrConfigInvalid},
		{"auth without ttl", func(c *Config) {
			c.Auth.URL = "http://localhost:5000"
			c.Auth.SessionTTL = 0
		}, core.ErrConfigInvalid},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, core.ErrConfigInvalid},
		{"smtp without from", func(c *Config) { c.Contact.SMTP.Host = "smtp.example.com" }, core.ErrConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_StorageOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Type = "s3"
	cfg.Storage.S3.Bucket = "settings"
	cfg.Storage.S3.Prefix = "prod"

	opts := cfg.StorageOptions()
	if opts.Type != "s3" || opts.S3.Bucket != "settings" || opts.S3.Prefix != "prod" {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.PostgresTable != "kv_store" {
		t.Errorf("expected default table, got %q", opts.PostgresTable)
	}
}
