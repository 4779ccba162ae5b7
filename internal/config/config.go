package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Common validation errors.
var (
	ErrMissingDatabaseURL  = errors.New("DATABASE_URL is required")
	ErrMissingRegistryAuth = errors.New("REGISTRY_AUTH_ID and REGISTRY_AUTH_KEY are required")
	ErrMissingKakaoKey     = errors.New("KAKAO_REST_API_KEY is required")
	ErrMissingWorkerSecret = errors.New("WORKER_SECRET_PASSWORD is required")
)

// Default endpoints for the external collaborators.
const (
	DefaultRegistryEndpoint = "https://www.safe182.go.kr/api/lcm/findChildList.do"
	DefaultKakaoEndpoint    = "https://dapi.kakao.com/v2/local/search/address.json"
)

// Config holds all configuration for the service. It is built once in main
// and passed into constructors; components never read the environment
// themselves.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	// Upstream missing-person registry (safe182).
	RegistryEndpoint string `yaml:"registry_endpoint"`
	RegistryAuthID   string `yaml:"registry_auth_id"`
	RegistryAuthKey  string `yaml:"registry_auth_key"`

	// Kakao local address search.
	KakaoEndpoint string  `yaml:"kakao_endpoint"`
	KakaoAPIKey   string  `yaml:"kakao_api_key"`
	GeocodeRate   float64 `yaml:"geocode_rate"` // lookups per second

	// Shared secret for the pipeline trigger and lookup endpoints.
	WorkerSecret string `yaml:"worker_secret"`

	// RefreshInterval drives the timer trigger; zero disables it.
	RefreshInterval time.Duration `yaml:"-"`

	// BatchSize for delete/insert batches against the store.
	BatchSize int `yaml:"batch_size"`

	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load builds a Config from an optional YAML file (CONFIG_FILE, default
// ./config.yaml) with environment variables taking precedence, then applies
// defaults and validates. Call godotenv.Load before this if a .env file
// should participate.
func Load() (Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		// Durations come in as strings ("30m", "6h").
		var extra struct {
			RefreshInterval string `yaml:"refresh_interval"`
		}
		if err := yaml.Unmarshal(data, &extra); err == nil && extra.RefreshInterval != "" {
			d, err := time.ParseDuration(extra.RefreshInterval)
			if err != nil {
				return Config{}, fmt.Errorf("parse refresh_interval: %w", err)
			}
			cfg.RefreshInterval = d
		}
	}

	applyEnv(&cfg)

	if cfg.Port == "" {
		cfg.Port = "5050"
	}
	if cfg.RegistryEndpoint == "" {
		cfg.RegistryEndpoint = DefaultRegistryEndpoint
	}
	if cfg.KakaoEndpoint == "" {
		cfg.KakaoEndpoint = DefaultKakaoEndpoint
	}
	if cfg.GeocodeRate <= 0 {
		cfg.GeocodeRate = 10
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RegistryEndpoint, "REGISTRY_ENDPOINT")
	setString(&cfg.RegistryAuthID, "REGISTRY_AUTH_ID")
	setString(&cfg.RegistryAuthKey, "REGISTRY_AUTH_KEY")
	setString(&cfg.KakaoEndpoint, "KAKAO_ENDPOINT")
	setString(&cfg.KakaoAPIKey, "KAKAO_REST_API_KEY")
	setString(&cfg.WorkerSecret, "WORKER_SECRET_PASSWORD")

	if v := os.Getenv("GEOCODE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.GeocodeRate = f
		}
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RefreshInterval = d
		}
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		cfg.AllowedOrigins = cfg.AllowedOrigins[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, p)
			}
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that every required credential is present.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.RegistryAuthID == "" || c.RegistryAuthKey == "" {
		return ErrMissingRegistryAuth
	}
	if c.KakaoAPIKey == "" {
		return ErrMissingKakaoKey
	}
	if c.WorkerSecret == "" {
		return ErrMissingWorkerSecret
	}
	return nil
}
