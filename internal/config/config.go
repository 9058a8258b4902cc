package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantedge/quantedge/internal/core"
	"github.com/quantedge/quantedge/internal/settings"
	"github.com/quantedge/quantedge/internal/storage/kv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server   ServerConfig          `mapstructure:"server"`
	Storage  StorageConfig         `mapstructure:"storage"`
	Universe []settings.Instrument `mapstructure:"universe"`
	Backtest ServiceConfig         `mapstructure:"backtest"`
	Auth     AuthConfig            `mapstructure:"auth"`
	Contact  ContactConfig         `mapstructure:"contact"`
	Metrics  MetricsConfig         `mapstructure:"metrics"`
	Log      LogConfig             `mapstructure:"log"`
}

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	APIKey      string   `mapstructure:"api_key"`
	JobTTLHours int      `mapstructure:"job_ttl_hours"`
	MaxJobs     int      `mapstructure:"max_jobs"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StorageConfig selects the durable store for the settings record.
type StorageConfig struct {
	Type     string         `mapstructure:"type"` // "memory", "localfs", "s3" or "postgres"
	Path     string         `mapstructure:"path"` // For localfs
	Key      string         `mapstructure:"key"`
	S3       S3Config       `mapstructure:"s3"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// ServiceConfig points at an external HTTP service.
type ServiceConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds the auth service location and session lifetime.
type AuthConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// ContactConfig holds delivery settings for contact form messages.
type ContactConfig struct {
	AdminEmail string        `mapstructure:"admin_email"`
	SMTP       SMTPConfig    `mapstructure:"smtp"`
	Webhook    WebhookConfig `mapstructure:"webhook"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type WebhookConfig struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file. Values absent from the file keep
// their Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	// Support environment variable overrides
	v.SetEnvPrefix("QUANTEDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.job_ttl_hours", d.Server.JobTTLHours)
	v.SetDefault("server.max_jobs", d.Server.MaxJobs)
	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("storage.postgres.table", d.Storage.Postgres.Table)
	v.SetDefault("backtest.timeout", d.Backtest.Timeout)
	v.SetDefault("auth.timeout", d.Auth.Timeout)
	v.SetDefault("auth.session_ttl", d.Auth.SessionTTL)
	v.SetDefault("contact.smtp.port", d.Contact.SMTP.Port)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("log.level", d.Log.Level)
}

// DefaultStoragePath is where localfs keeps the settings record when no path
// is configured: quantedge under the user config directory, or ./data when
// that directory is unknown.
func DefaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "data"
	}
	return filepath.Join(dir, "quantedge")
}

// Defaults returns a config with sensible defaults. Settings are kept on the
// local file system; memory storage must be asked for explicitly.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Mode:        "release",
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Storage: StorageConfig{
			Type: kv.TypeLocalFS,
			Path: DefaultStoragePath(),
			Key:  settings.DefaultKey,
			Postgres: PostgresConfig{
				Table: kv.DefaultTable,
			},
		},
		Backtest: ServiceConfig{
			Timeout: 2 * time.Minute,
		},
		Auth: AuthConfig{
			Timeout:    10 * time.Second,
			SessionTTL: 24 * time.Hour,
		},
		Contact: ContactConfig{
			SMTP: SMTPConfig{Port: 587},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxJobs < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_jobs must be positive, got %d", c.Server.MaxJobs))
	}
	if c.Server.JobTTLHours < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("job_ttl_hours cannot be negative, got %d", c.Server.JobTTLHours))
	}

	// Storage validation - each backend needs its own location
	switch c.Storage.Type {
	case "", kv.TypeMemory:
	case kv.TypeLocalFS:
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required when type is localfs"))
		}
	case kv.TypeS3:
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when type is s3"))
		}
	case kv.TypePostgres:
		if c.Storage.Postgres.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("postgres dsn required when type is postgres"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	for name, svc := range map[string]string{"backtest": c.Backtest.URL, "auth": c.Auth.URL} {
		if svc == "" {
			continue
		}
		if u, err := url.Parse(svc); err != nil || u.Scheme == "" || u.Host == "" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("%s url %q is not absolute", name, svc))
		}
	}

	if c.Auth.URL != "" && c.Auth.SessionTTL <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("session_ttl must be positive, got %s", c.Auth.SessionTTL))
	}

	if c.Contact.SMTP.Host != "" && c.Contact.SMTP.From == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("smtp from address required when smtp host is set"))
	}

	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return core.WrapError(core.ErrConfigInvalid, err)
		}
	}

	return nil
}

// StorageOptions translates the storage section for kv.Open.
func (c *Config) StorageOptions() kv.Options {
	return kv.Options{
		Type: c.Storage.Type,
		Path: c.Storage.Path,
		S3: kv.S3Config{
			Bucket:    c.Storage.S3.Bucket,
			Endpoint:  c.Storage.S3.Endpoint,
			Region:    c.Storage.S3.Region,
			AccessKey: c.Storage.S3.AccessKey,
			SecretKey: c.Storage.S3.SecretKey,
			Prefix:    c.Storage.S3.Prefix,
		},
		PostgresDSN:   c.Storage.Postgres.DSN,
		PostgresTable: c.Storage.Postgres.Table,
	}
}
