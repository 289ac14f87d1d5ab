// Package config loads service configuration from config.toml and GANJI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. GANJI_DATABASE_DSN.
const EnvPrefix = "GANJI"

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `validate:"required"`
	Database DatabaseConfig `validate:"required"`
	Redis    RedisConfig
	JWT      JWTConfig `validate:"required"`
	Log      LogConfig
	HTTP     HTTPConfig
	Ledger   LedgerConfig
	Worker   WorkerConfig
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Name string `validate:"required"`
	Env  string `validate:"oneof=development test staging production"`
	Port string `validate:"required,numeric"`
}

// IsDevelopment reports whether the service runs in development mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `validate:"required"`
	MaxConns        int32         `validate:"gt=0"`
	MinConns        int32         `validate:"gte=0,ltefield=MaxConns"`
	MaxConnLifetime time.Duration `validate:"min=1m"`
	MaxConnIdleTime time.Duration `validate:"min=1m"`
}

// RedisConfig holds settings for the commission rule cache.
type RedisConfig struct {
	Enabled  bool
	Addr     string `validate:"required_if=Enabled true"`
	Password string
	DB       int           `validate:"gte=0"`
	RuleTTL  time.Duration `validate:"min=1s"`
}

// JWTConfig holds bearer token validation settings.
type JWTConfig struct {
	Secret string `validate:"required,min=16"`
	Issuer string `validate:"required"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

// HTTPConfig holds HTTP server timeouts.
type HTTPConfig struct {
	ReadTimeout     time.Duration `validate:"min=1s"`
	WriteTimeout    time.Duration `validate:"min=1s"`
	IdleTimeout     time.Duration `validate:"min=1s"`
	ShutdownTimeout time.Duration `validate:"min=1s"`
}

// LedgerConfig controls how raw records become ledger entries.
type LedgerConfig struct {
	// Timezone is the IANA zone used for date-only comparisons and period boundaries.
	Timezone string `validate:"required"`
	// SkipInvalidRecords excludes malformed records from reports instead of failing them.
	SkipInvalidRecords bool
}

// Location resolves Timezone.
func (l LedgerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load ledger timezone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

// WorkerConfig controls the target evaluation worker.
type WorkerConfig struct {
	Interval time.Duration `validate:"min=1s"`
}

// Load loads configuration.
// Priority (highest to lowest):
// 1. Environment variables with GANJI_ prefix (e.g., GANJI_DATABASE_DSN)
// 2. config.toml in the working directory or /etc/ganji
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/ganji")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxConns:        v.GetInt32("database.max_conns"),
			MinConns:        v.GetInt32("database.min_conns"),
			MaxConnLifetime: v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime: v.GetDuration("database.max_conn_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			RuleTTL:  v.GetDuration("redis.rule_ttl"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Ledger: LedgerConfig{
			Timezone:           v.GetString("ledger.timezone"),
			SkipInvalidRecords: v.GetBool("ledger.skip_invalid_records"),
		},
		Worker: WorkerConfig{
			Interval: v.GetDuration("worker.interval"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ganji")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.rule_ttl", 5*time.Minute)

	v.SetDefault("jwt.issuer", "ganji")
	v.SetDefault("log.level", "info")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)

	v.SetDefault("ledger.timezone", "UTC")
	v.SetDefault("ledger.skip_invalid_records", false)

	v.SetDefault("worker.interval", 15*time.Minute)
}

// Validate checks struct constraints and that the ledger time zone resolves.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Ledger.Location(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
