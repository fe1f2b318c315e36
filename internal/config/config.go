// File: internal/config/config.go
package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// RequestTimeout caps a single handler run.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	APIKey         string        `yaml:"api_key" env:"ADMIN_API_KEY, overwrite"` // optional bearer for machine clients
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url" env:"DATABASE_URL, overwrite"`
	MaxConns int32  `yaml:"max_conns"`
}

// RedisConfig is optional; an empty URL disables locking and rate limiting.
type RedisConfig struct {
	URL      string `yaml:"url" env:"REDIS_URL, overwrite"`
	Password string `yaml:"password" env:"REDIS_PASSWORD, overwrite"`
	DB       int    `yaml:"db"`
}

type StorageConfig struct {
	URL          string        `yaml:"url" env:"SUPABASE_URL, overwrite"`
	ServiceKey   string        `yaml:"service_key" env:"SUPABASE_SERVICE_ROLE_KEY, overwrite"`
	Bucket       string        `yaml:"bucket"`
	SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
}

type IdentityConfig struct {
	URL     string `yaml:"url" env:"SUPABASE_URL, overwrite"`
	AnonKey string `yaml:"anon_key" env:"SUPABASE_ANON_KEY, overwrite"`
	// DevEmail/DevPassword are accepted in dev mode when URL is empty.
	DevEmail    string `yaml:"dev_email"`
	DevPassword string `yaml:"dev_password"`
}

type SessionConfig struct {
	Secret       string        `yaml:"secret" env:"SESSION_SECRET, overwrite"`
	TTL          time.Duration `yaml:"ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
	CookieDomain string        `yaml:"cookie_domain"`
}

type MediaConfig struct {
	MaxWidth    int   `yaml:"max_width"`
	MaxHeight   int   `yaml:"max_height"`
	Quality     int   `yaml:"quality"`
	MaxUploadMB int64 `yaml:"max_upload_mb"`
}

type AppConfig struct {
	Locale           string        `yaml:"locale"` // es|en
	ListDefaultLimit int           `yaml:"list_default_limit"`
	ListMaxLimit     int           `yaml:"list_max_limit"`
	LoginRateLimit   int           `yaml:"login_rate_limit"`
	LoginRateWindow  time.Duration `yaml:"login_rate_window"`
	PoolStatsEvery   time.Duration `yaml:"pool_stats_every"`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Identity IdentityConfig `yaml:"identity"`
	Session  SessionConfig  `yaml:"session"`
	Media    MediaConfig    `yaml:"media"`
	App      AppConfig      `yaml:"app"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse decodes yaml, applies env overrides and defaults, then validates.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// secrets usually arrive through the environment
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if !dev {
		if cfg.Database.URL == "" {
			return nil, errors.New("database.url is required")
		}
		if cfg.Session.Secret == "" {
			return nil, errors.New("session.secret is required")
		}
	}
	if cfg.App.Locale != "es" && cfg.App.Locale != "en" {
		return nil, fmt.Errorf("app.locale %q is not supported", cfg.App.Locale)
	}
	if cfg.Media.Quality < 1 || cfg.Media.Quality > 100 {
		return nil, errors.New("media.quality must be within 1..100")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	cfg.HTTP.ReadTimeout = normalizeDuration(cfg.HTTP.ReadTimeout, 15*time.Second)
	cfg.HTTP.WriteTimeout = normalizeDuration(cfg.HTTP.WriteTimeout, 60*time.Second)
	cfg.HTTP.RequestTimeout = normalizeDuration(cfg.HTTP.RequestTimeout, 30*time.Second)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "autos-fotos"
	}
	cfg.Storage.SignedURLTTL = normalizeDuration(cfg.Storage.SignedURLTTL, 2*time.Hour)
	cfg.Session.TTL = normalizeDuration(cfg.Session.TTL, 7*24*time.Hour)
	if cfg.Media.MaxWidth <= 0 {
		cfg.Media.MaxWidth = 1920
	}
	if cfg.Media.MaxHeight <= 0 {
		cfg.Media.MaxHeight = 1080
	}
	if cfg.Media.Quality == 0 {
		cfg.Media.Quality = 70
	}
	if cfg.Media.MaxUploadMB <= 0 {
		cfg.Media.MaxUploadMB = 100
	}
	if cfg.App.Locale == "" {
		cfg.App.Locale = "es"
	}
	if cfg.App.ListDefaultLimit <= 0 {
		cfg.App.ListDefaultLimit = 50
	}
	if cfg.App.ListMaxLimit <= 0 {
		cfg.App.ListMaxLimit = 500
	}
	if cfg.App.LoginRateLimit <= 0 {
		cfg.App.LoginRateLimit = 10
	}
	cfg.App.LoginRateWindow = normalizeDuration(cfg.App.LoginRateWindow, 15*time.Minute)
	cfg.App.PoolStatsEvery = normalizeDuration(cfg.App.PoolStatsEvery, 15*time.Second)
}

func normalizeDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
