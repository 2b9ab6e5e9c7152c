package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if cfg.SessionGap != 30*time.Minute {
		t.Errorf("SessionGap = %s, want 30m", cfg.SessionGap)
	}
	if cfg.HistogramBuckets != 50 {
		t.Errorf("HistogramBuckets = %d, want 50", cfg.HistogramBuckets)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
	if !cfg.SeedDemo {
		t.Error("SeedDemo should default to true")
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Errorf("CORSOrigins = %v, want none", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SESSION_GAP", "45m")
	t.Setenv("HISTOGRAM_BUCKETS", "24")
	t.Setenv("VIEWPORT_WIDTH", "1024")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("EXPORT_CACHE_TTL", "1h")
	t.Setenv("SEED_DEMO", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173,https://field.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.SessionGap != 45*time.Minute {
		t.Errorf("SessionGap = %s", cfg.SessionGap)
	}
	if cfg.HistogramBuckets != 24 {
		t.Errorf("HistogramBuckets = %d", cfg.HistogramBuckets)
	}
	if cfg.ViewportWidth != 1024 {
		t.Errorf("ViewportWidth = %g", cfg.ViewportWidth)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" || cfg.ExportCacheTTL != time.Hour {
		t.Errorf("redis = %q ttl %s", cfg.RedisURL, cfg.ExportCacheTTL)
	}
	if cfg.SeedDemo {
		t.Error("SeedDemo should be false")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://field.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero gap", "SESSION_GAP", "0s"},
		{"no buckets", "HISTOGRAM_BUCKETS", "0"},
		{"negative width", "VIEWPORT_WIDTH", "-1"},
		{"bad duration", "SESSION_GAP", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s: want error", tt.key, tt.value)
			}
		})
	}
}
