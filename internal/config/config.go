package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Events    EventsConfig    `mapstructure:"events"`
	Log       LogConfig       `mapstructure:"log"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`       // "development" or "production"
	APIPrefix string `mapstructure:"api_prefix"` // e.g. "/api/v1"
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // "sqlite" or "postgres"
	DSN             string `mapstructure:"dsn"`               // Connection string
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // Maximum idle connections (Postgres)
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // Maximum open connections (Postgres)
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // Connection max lifetime in minutes (Postgres)
	LogLevel        string `mapstructure:"log_level"`         // GORM log level, defaults to log.level
}

// AuthConfig holds token and registration settings
type AuthConfig struct {
	JWTSecret                string `mapstructure:"jwt_secret"`
	JWTAlgorithm             string `mapstructure:"jwt_algorithm"` // HS256, HS384 or HS512
	AccessTokenExpireMinutes int    `mapstructure:"access_token_expire_minutes"`
	DefaultRole              string `mapstructure:"default_role"`
}

// TokenTTL returns the configured access token lifetime
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

// LLMConfig holds generation backend settings
type LLMConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the generation backend request timeout
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// EventsConfig holds prompt event publishing configuration
type EventsConfig struct {
	Type       string `mapstructure:"type"`        // "none" or "valkey"
	ValkeyAddr string `mapstructure:"valkey_addr"` // e.g., "localhost:6379"
	Channel    string `mapstructure:"channel"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// BootstrapConfig holds the optional first admin account
type BootstrapConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Read from config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/promptgate/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return unmarshal(v)
}

// LoadFile reads configuration from an explicit file path, still honoring
// environment overrides.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return unmarshal(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.api_prefix", "/api/v1")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./promptgate.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60) // 60 minutes
	v.SetDefault("database.log_level", "")
	v.SetDefault("auth.jwt_secret", "changethis")
	v.SetDefault("auth.jwt_algorithm", "HS256")
	v.SetDefault("auth.access_token_expire_minutes", 30)
	v.SetDefault("auth.default_role", "user")
	v.SetDefault("llm.base_url", "http://ollama:11434")
	v.SetDefault("llm.model", "llama3")
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("events.type", "none")
	v.SetDefault("events.valkey_addr", "localhost:6379")
	v.SetDefault("events.channel", "promptgate:prompts")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("bootstrap.admin_email", "")
	v.SetDefault("bootstrap.admin_password", "")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	// Environment variables override
	v.SetEnvPrefix("PROMPTGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late at request time.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite", "postgres", "postgresql":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver: %q", c.Database.Driver))
	}

	switch c.Auth.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("unsupported jwt algorithm: %q", c.Auth.JWTAlgorithm))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret must not be empty"))
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("auth.access_token_expire_minutes must be positive"))
	}

	switch c.Events.Type {
	case "none", "":
	case "valkey":
		if c.Events.ValkeyAddr == "" {
			errs = append(errs, errors.New("events.valkey_addr is required when events.type is valkey"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported events type: %q (supported: none, valkey)", c.Events.Type))
	}

	return errors.Join(errs...)
}
