package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.ChunkSize != 20 {
		t.Errorf("ChunkSize = %d, want 20", cfg.ChunkSize)
	}
	if cfg.OverrideTolerance != 10 {
		t.Errorf("OverrideTolerance = %v, want 10", cfg.OverrideTolerance)
	}
	if cfg.ClassifyTimeout != 60*time.Second {
		t.Errorf("ClassifyTimeout = %v, want 60s", cfg.ClassifyTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORE_BACKEND", "firestore")
	t.Setenv("FIRESTORE_PROJECT", "test-project")
	t.Setenv("CLASSIFY_CHUNK_SIZE", "5")
	t.Setenv("CLASSIFY_TIMEOUT", "90s")
	t.Setenv("OVERRIDE_TOLERANCE", "25")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.StoreBackend != "firestore" || cfg.FirestoreProject != "test-project" {
		t.Errorf("backend = %q/%q, want firestore/test-project", cfg.StoreBackend, cfg.FirestoreProject)
	}
	if cfg.ChunkSize != 5 {
		t.Errorf("ChunkSize = %d, want 5", cfg.ChunkSize)
	}
	if cfg.ClassifyTimeout != 90*time.Second {
		t.Errorf("ClassifyTimeout = %v, want 90s", cfg.ClassifyTimeout)
	}
	if cfg.OverrideTolerance != 25 {
		t.Errorf("OverrideTolerance = %v, want 25", cfg.OverrideTolerance)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Port = "http" }, true},
		{"port out of range", func(c *Config) { c.Port = "70000" }, true},
		{"unknown backend", func(c *Config) { c.StoreBackend = "bigtable" }, true},
		{"firestore without project", func(c *Config) {
			c.StoreBackend = "firestore"
			c.FirestoreProject = ""
		}, true},
		{"bad extractor url", func(c *Config) { c.ExtractorURL = "ftp://x" }, true},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, true},
		{"negative tolerance", func(c *Config) { c.OverrideTolerance = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenMap(t *testing.T) {
	cfg := &Config{AuthTokens: "abc=alice, def=bob,,broken,=nouser"}

	m := cfg.TokenMap()
	if len(m) != 2 {
		t.Fatalf("TokenMap() has %d entries, want 2: %v", len(m), m)
	}
	if m["abc"] != "alice" || m["def"] != "bob" {
		t.Errorf("TokenMap() = %v", m)
	}
}
