package authcore

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigValidatesWithSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.Token.AccessTTL != time.Hour {
		t.Fatalf("AccessTTL = %v, want 1h", cfg.Token.AccessTTL)
	}
	if cfg.Token.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTTL = %v, want 168h", cfg.Token.RefreshTTL)
	}
	if cfg.Lockout.MaxAttempts != 5 || cfg.Lockout.Duration != 15*time.Minute {
		t.Fatalf("unexpected lockout defaults: %+v", cfg.Lockout)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero access ttl", func(c *Config) { c.Token.AccessTTL = 0 }},
		{"zero refresh ttl", func(c *Config) { c.Token.RefreshTTL = 0 }},
		{"refresh shorter than access", func(c *Config) { c.Token.RefreshTTL = time.Minute }},
		{"unknown signing method", func(c *Config) { c.Token.SigningMethod = "rs256" }},
		{"short hs256 secret", func(c *Config) { c.Token.Secret = []byte("short") }},
		{"ed25519 without keys", func(c *Config) { c.Token.SigningMethod = "ed25519" }},
		{"negative leeway", func(c *Config) { c.Token.Leeway = -time.Second }},
		{"zero lockout attempts", func(c *Config) { c.Lockout.MaxAttempts = 0 }},
		{"zero lockout duration", func(c *Config) { c.Lockout.Duration = 0 }},
		{"unknown credential mode", func(c *Config) { c.Credential.Mode = "bcrypt" }},
		{"audit enabled without buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testEngineConfig()
			tt.mutate(&cfg)

			if err := cfg.Validate(); !errors.Is(err, ErrConfigInvalid) {
				t.Fatalf("Validate = %v, want ErrConfigInvalid", err)
			}
		})
	}
}

func TestBuildRequiresDirectory(t *testing.T) {
	_, err := New().WithConfig(testEngineConfig()).Build()
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("Build = %v, want ErrConfigInvalid", err)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Token.Secret = nil

	_, err := New().WithConfig(cfg).WithDirectory(testDirectory()).Build()
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("Build = %v, want ErrConfigInvalid", err)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	builder := New().WithConfig(testEngineConfig()).WithDirectory(testDirectory())

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := builder.Build(); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("second Build = %v, want ErrConfigInvalid", err)
	}
}

func TestConfigCloneIsolatesKeyMaterial(t *testing.T) {
	cfg := testEngineConfig()
	builder := New().WithConfig(cfg).WithDirectory(testDirectory())

	// Mutating the caller's secret after WithConfig must not reach the
	// engine.
	cfg.Token.Secret[0] = 'x'

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if engine.config.Token.Secret[0] == 'x' {
		t.Fatal("config secret aliases caller's slice")
	}
}
