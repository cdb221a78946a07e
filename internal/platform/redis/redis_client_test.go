package redis

import (
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := Config{Host: "cache", Port: "6379", Password: "secret", DB: 2}
	if cfg != expected {
		t.Errorf("expected %+v, got %+v", expected, cfg)
	}
	if cfg.Addr() != "cache:6379" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
	if !cfg.Enabled() {
		t.Error("expected config to be enabled")
	}
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_DB", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Enabled() {
		t.Error("expected config to be disabled without REDIS_HOST")
	}
}

func TestLoadConfig_InvalidDB(t *testing.T) {
	t.Setenv("REDIS_DB", "primary")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid REDIS_DB")
	}
}
