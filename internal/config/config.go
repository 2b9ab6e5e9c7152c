package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBDir    string     `env:"DB_DIR" envDefault:"data"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// CORSOrigins are the browser origins allowed to call the API with
	// credentials, such as a frontend dev server. Empty disables CORS.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// RedisURL enables the export cache. Empty disables it.
	RedisURL       string        `env:"REDIS_URL"`
	ExportCacheTTL time.Duration `env:"EXPORT_CACHE_TTL" envDefault:"10m"`

	SessionGap       time.Duration `env:"SESSION_GAP" envDefault:"30m"`
	HistogramBuckets int           `env:"HISTOGRAM_BUCKETS" envDefault:"50"`
	ViewportWidth    float64       `env:"VIEWPORT_WIDTH" envDefault:"800"`
	ViewportHeight   float64       `env:"VIEWPORT_HEIGHT" envDefault:"600"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@fieldview.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"changeme"`
	SeedDemo      bool   `env:"SEED_DEMO" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.SessionGap <= 0 {
		return nil, fmt.Errorf("SESSION_GAP must be positive, got %s", cfg.SessionGap)
	}
	if cfg.HistogramBuckets < 1 {
		return nil, fmt.Errorf("HISTOGRAM_BUCKETS must be at least 1, got %d", cfg.HistogramBuckets)
	}
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		return nil, fmt.Errorf("viewport must have positive size, got %gx%g", cfg.ViewportWidth, cfg.ViewportHeight)
	}
	return &cfg, nil
}
