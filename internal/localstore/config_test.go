package localstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROMPTGATE_CONFIG_DIR", dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Fatalf("expected %s, got %s", dir, got)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	t.Setenv("PROMPTGATE_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerURL != "" {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if cfg.Server() != DefaultServerURL {
		t.Fatalf("expected default server, got %s", cfg.Server())
	}
}

func TestConfigRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	t.Setenv("PROMPTGATE_CONFIG_DIR", dir)

	want := &Config{ServerURL: "https://pg.example.com", Email: "user@example.com", Model: "mistral"}
	if err := SaveConfig(want); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.Server() != "https://pg.example.com" {
		t.Fatalf("unexpected server: %s", got.Server())
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROMPTGATE_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server_url: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}
