// Package config loads application settings from YAML, .env and PNL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverMemory     = "memory"
	DriverSQLite     = "sqlite"
	DriverPostgres   = "postgres"
	DriverRedis      = "redis"
	DriverClickhouse = "clickhouse"
)

// Persistence codecs.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Sheets    SheetsConfig    `mapstructure:"sheets"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	DSN       string `mapstructure:"dsn"`
	Codec     string `mapstructure:"codec"`
	KeyPrefix string `mapstructure:"key_prefix"`
	Migrate   bool   `mapstructure:"migrate"`
}

type SheetsConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ServiceToken string        `mapstructure:"service_token"`
}

type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	RefreshSpec string `mapstructure:"refresh_spec"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// Load reads configuration. A missing config file is allowed when envOnly is set.
// Values from a .env file in the working directory are exported first without
// overriding variables that are already set.
func Load(path string, envOnly bool) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("PNL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.dsn", "data/dashboard.db")
	v.SetDefault("storage.codec", CodecJSON)
	v.SetDefault("storage.key_prefix", "pnl:")
	v.SetDefault("storage.migrate", true)
	v.SetDefault("sheets.base_url", "https://sheets.googleapis.com")
	v.SetDefault("sheets.timeout", "15s")
	v.SetDefault("sheets.service_token", "")
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.refresh_spec", "0 */15 * * * *")
	v.SetDefault("metrics.namespace", "pnl_dashboard")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks enum values and required fields.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres, DriverRedis, DriverClickhouse:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Storage.Codec {
	case CodecJSON, CodecMsgpack:
	default:
		return fmt.Errorf("unknown storage.codec %q", c.Storage.Codec)
	}

	if c.Server.HTTPAddr == "" {
		return errors.New("server.http_addr is required")
	}
	if c.Scheduler.Enabled && c.Scheduler.RefreshSpec == "" {
		return errors.New("scheduler.refresh_spec is required when the scheduler is enabled")
	}
	if c.Sheets.Timeout <= 0 {
		return errors.New("sheets.timeout must be positive")
	}
	return nil
}
