package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "SNAPSHOT_DRIVER", "CARTS_FILE", "CATALOG_SIZE", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.SnapshotDriver != DriverFile || cfg.CartsFile != "data/carts.json" {
		t.Fatalf("unexpected snapshot settings: %s %s", cfg.SnapshotDriver, cfg.CartsFile)
	}
	if cfg.CatalogSize != 1000 || cfg.RateLimitRPS != 0 {
		t.Fatalf("unexpected catalog/rate settings: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("SNAPSHOT_DRIVER", "Redis")
	t.Setenv("CATALOG_SIZE", "50")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := FromEnv()
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.ShutdownTimeout)
	}
	if cfg.SnapshotDriver != DriverRedis {
		t.Fatalf("expected redis driver, got %q", cfg.SnapshotDriver)
	}
	if cfg.CatalogSize != 50 || cfg.RateLimitRPS != 2.5 {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SNAPSHOT_DRIVER", "")
	cfg := FromEnv()
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.SnapshotDriver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
