package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "/api/v1", cfg.Server.APIPrefix)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "HS256", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL())
	assert.Equal(t, "user", cfg.Auth.DefaultRole)
	assert.Equal(t, "http://ollama:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout())
	assert.Equal(t, "none", cfg.Events.Type)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROMPTGATE_SERVER_PORT", "9100")
	t.Setenv("PROMPTGATE_AUTH_ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("PROMPTGATE_LLM_MODEL", "mistral")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL())
	assert.Equal(t, "mistral", cfg.LLM.Model)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptgate.yaml")
	content := []byte("database:\n  driver: postgres\n  dsn: host=db user=app\nauth:\n  jwt_algorithm: HS512\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=app", cfg.Database.DSN)
	assert.Equal(t, "HS512", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, "changethis", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			Auth:     AuthConfig{JWTSecret: "s", JWTAlgorithm: "HS256", AccessTokenExpireMinutes: 30},
			Events:   EventsConfig{Type: "none"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported database driver"},
		{"bad algorithm", func(c *Config) { c.Auth.JWTAlgorithm = "RS256" }, "unsupported jwt algorithm"},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret"},
		{"zero ttl", func(c *Config) { c.Auth.AccessTokenExpireMinutes = 0 }, "must be positive"},
		{"valkey without addr", func(c *Config) { c.Events.Type = "valkey" }, "valkey_addr"},
		{"bad events type", func(c *Config) { c.Events.Type = "kafka" }, "unsupported events type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
