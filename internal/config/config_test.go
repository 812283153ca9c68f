package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "mamacare_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("ADMIN_EMAILS", " Admin@Example.com , ops@example.com,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr())
	}
	if cfg.JWT.AccessTokenTTL != 30*24*time.Hour {
		t.Fatalf("access token ttl should default to 30 days, got %s", cfg.JWT.AccessTokenTTL)
	}
	if !cfg.Admin.IsAdminEmail("admin@example.com") || !cfg.Admin.IsAdminEmail("ops@example.com") {
		t.Fatalf("admin emails not parsed: %v", cfg.Admin.Emails)
	}
	if len(cfg.Admin.Emails) != 2 {
		t.Fatalf("expected 2 admin emails, got %v", cfg.Admin.Emails)
	}
}

func TestLoadConfig_MongoOptional(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("REDIS_HOST", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MongoDB.URI != "" {
		t.Fatalf("expected empty mongo uri")
	}
	if cfg.Redis.Addr() != "" {
		t.Fatalf("expected redis to be disabled, got %q", cfg.Redis.Addr())
	}
	if cfg.Server.Port != "5000" {
		t.Fatalf("unexpected default port %s", cfg.Server.Port)
	}
}

func TestJWTConfigValidate(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		if err := (JWTConfig{Secret: secret}).Validate(); err != ErrMissingJWTSecret {
			t.Fatalf("secret %q: expected ErrMissingJWTSecret, got %v", secret, err)
		}
	}
	if err := (JWTConfig{Secret: "s3cret"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
