package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/beleads")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ALLOW_ALL", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173")
	t.Setenv("DIRECTORY_PROVIDER", "gemini")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DIRECTORY_PAGE_SIZE", "")
	t.Setenv("RECYCLE_COOLDOWN", "")
	t.Setenv("ACQUISITION_MAX_TARGET", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetDirectoryPageSize() != 20 {
		t.Fatalf("page size = %d, want 20", cfg.GetDirectoryPageSize())
	}
	if cfg.GetRecycleCooldown() != 45*24*time.Hour {
		t.Fatalf("cooldown = %v", cfg.GetRecycleCooldown())
	}
	if cfg.GetMaxTargetCount() != 100 {
		t.Fatalf("max target = %d, want fallback 100", cfg.GetMaxTargetCount())
	}
	if cfg.GetAcquisitionTimeout() >= cfg.GetAcquisitionLockTTL() || cfg.GetAcquisitionTimeout() >= cfg.GetReservationTimeout() {
		t.Fatalf("default timeout %v must undercut lock %v and hold %v", cfg.GetAcquisitionTimeout(), cfg.GetAcquisitionLockTTL(), cfg.GetReservationTimeout())
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DIRECTORY_PAGE_DELAY", "2s")
	t.Setenv("DIRECTORY_PROVIDER", "MOONSHOT")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetDirectoryPageDelay() != 2*time.Second {
		t.Fatalf("page delay = %v", cfg.GetDirectoryPageDelay())
	}
	if cfg.GetDirectoryProvider() != "moonshot" {
		t.Fatalf("provider = %q", cfg.GetDirectoryProvider())
	}
	if got := cfg.GetCORSOrigins(); len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("origins = %v", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database":    {"DATABASE_URL": ""},
		"missing secret":      {"JWT_ACCESS_SECRET": ""},
		"unknown provider":    {"DIRECTORY_PROVIDER": "openai"},
		"wildcard with creds": {"CORS_ORIGINS": "*", "CORS_ALLOW_CREDENTIALS": "true"},
		"timeout past lock":   {"ACQUISITION_TIMEOUT": "10m", "ACQUISITION_LOCK_TTL": "10m"},
		"timeout past hold":   {"ACQUISITION_TIMEOUT": "12m", "ACQUISITION_LOCK_TTL": "20m", "QUOTA_RESERVATION_TIMEOUT": "12m"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
