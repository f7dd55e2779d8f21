package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute || cfg.Auth.RefreshTokenTTL != 720*time.Hour {
		t.Fatalf("unexpected token TTLs: %+v", cfg.Auth)
	}
	if cfg.Mongo.Database != "nadlan_portal" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected storage defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env")
	}
	if cfg.ShutdownTimeout != 15*time.Second || cfg.ActivityWorkers != 4 {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if cfg.Chat.APIKey != "" || cfg.Chat.Model != "gpt-4o-mini" || cfg.Chat.Timeout != time.Minute {
		t.Fatalf("unexpected chat defaults: %+v", cfg.Chat)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "s3cret",
		"ENV":              "production",
		"COOKIE_SECURE":    "true",
		"ACCESS_TOKEN_TTL": "5m",
		"CHAT_RATE_LIMIT":  "0.5",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !cfg.Auth.CookieSecure || cfg.Auth.AccessTokenTTL != 5*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg.Auth)
	}
	if cfg.Chat.RateLimit != 0.5 {
		t.Fatalf("unexpected chat rate limit %v", cfg.Chat.RateLimit)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("production must not be development")
	}
}

func TestLoadWith_MissingSecret(t *testing.T) {
	if _, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error for missing JWT_SECRET")
	}
}
