package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Timezone != "Europe/Warsaw" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}

	// The default file must now exist with restrictive permissions.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perms = %o, want 600", perm)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Album = "12345"
	cfg.CacheBackend = "sqlite"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Album != "12345" || loaded.CacheBackend != "sqlite" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestNormalize_UnknownCacheBackend(t *testing.T) {
	cfg := &Config{CacheBackend: "redis"}
	cfg.Normalize()
	if cfg.CacheBackend != "memory" {
		t.Errorf("backend = %q, want memory fallback", cfg.CacheBackend)
	}
}
