package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want %q", cfg.Port, "8080")
	}
	if cfg.Env != "development" {
		t.Errorf("Env: got %q, want %q", cfg.Env, "development")
	}
	if cfg.DBName != "loom" {
		t.Errorf("DBName: got %q, want %q", cfg.DBName, "loom")
	}
	if cfg.AnalyticsFlushInterval != 30*time.Second {
		t.Errorf("AnalyticsFlushInterval: got %v, want 30s", cfg.AnalyticsFlushInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("ANALYTICS_FLUSH_SECONDS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port: got %q, want %q", cfg.Port, "9090")
	}
	if cfg.DBHost != "db.internal" {
		t.Errorf("DBHost: got %q, want %q", cfg.DBHost, "db.internal")
	}
	if cfg.AnalyticsFlushInterval != 5*time.Second {
		t.Errorf("AnalyticsFlushInterval: got %v, want 5s", cfg.AnalyticsFlushInterval)
	}
}

func TestLoadProductionRequiresPassword(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Error("expected error for default password in production")
	}

	t.Setenv("POSTGRES_PASSWORD", "real-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsDev() {
		t.Error("IsDev must be false in production")
	}
}

func TestDSNAndAddr(t *testing.T) {
	cfg := &Config{
		Host: "127.0.0.1", Port: "8081",
		DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5433", DBName: "d",
	}

	wantDSN := "postgres://u:p@h:5433/d?sslmode=disable"
	if got := cfg.DSN(); got != wantDSN {
		t.Errorf("DSN: got %q, want %q", got, wantDSN)
	}
	if got := cfg.Addr(); got != "127.0.0.1:8081" {
		t.Errorf("Addr: got %q, want %q", got, "127.0.0.1:8081")
	}
}

func TestEnvSecondsInvalid(t *testing.T) {
	t.Setenv("ANALYTICS_FLUSH_SECONDS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AnalyticsFlushInterval != 30*time.Second {
		t.Errorf("AnalyticsFlushInterval: got %v, want fallback 30s", cfg.AnalyticsFlushInterval)
	}
}
