package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.NearbyRadiusM != 5000 {
		t.Fatalf("expected default nearby radius")
	}
	if cfg.MaxPosts != 10000 {
		t.Fatalf("expected default post cap")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("NEARBY_RADIUS_M", "250")
	t.Setenv("FEED_REFRESH_SECONDS", "5")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.NearbyRadiusM != 250 {
		t.Fatalf("expected override radius")
	}
	if cfg.RefreshInterval() != 5*time.Second {
		t.Fatalf("expected override refresh interval")
	}
}

func TestRefreshIntervalFallback(t *testing.T) {
	cfg := Config{RefreshSeconds: 0}
	if cfg.RefreshInterval() != 30*time.Second {
		t.Fatalf("expected fallback interval")
	}
}
