package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var cfgEnvVars = []string{
	"CONFIG_FILE", "PORT", "DATABASE_URL",
	"REGISTRY_ENDPOINT", "REGISTRY_AUTH_ID", "REGISTRY_AUTH_KEY",
	"KAKAO_ENDPOINT", "KAKAO_REST_API_KEY", "GEOCODE_RATE",
	"WORKER_SECRET_PASSWORD", "REFRESH_INTERVAL", "BATCH_SIZE",
	"ALLOWED_ORIGINS",
}

// clearEnv unsets every config variable for the duration of a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range cfgEnvVars {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("REGISTRY_AUTH_ID", "id")
	t.Setenv("REGISTRY_AUTH_KEY", "key")
	t.Setenv("KAKAO_REST_API_KEY", "kakao")
	t.Setenv("WORKER_SECRET_PASSWORD", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "5050" {
		t.Errorf("expected default port 5050, got %s", cfg.Port)
	}
	if cfg.RegistryEndpoint != DefaultRegistryEndpoint {
		t.Errorf("unexpected registry endpoint: %s", cfg.RegistryEndpoint)
	}
	if cfg.KakaoEndpoint != DefaultKakaoEndpoint {
		t.Errorf("unexpected kakao endpoint: %s", cfg.KakaoEndpoint)
	}
	if cfg.BatchSize != 100 {
		t.Errorf("expected default batch size 100, got %d", cfg.BatchSize)
	}
	if cfg.GeocodeRate != 10 {
		t.Errorf("expected default geocode rate 10, got %v", cfg.GeocodeRate)
	}
	if cfg.RefreshInterval != 0 {
		t.Errorf("expected timer disabled by default, got %v", cfg.RefreshInterval)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  error
	}{
		{"no database url", "DATABASE_URL", ErrMissingDatabaseURL},
		{"no registry id", "REGISTRY_AUTH_ID", ErrMissingRegistryAuth},
		{"no registry key", "REGISTRY_AUTH_KEY", ErrMissingRegistryAuth},
		{"no kakao key", "KAKAO_REST_API_KEY", ErrMissingKakaoKey},
		{"no worker secret", "WORKER_SECRET_PASSWORD", ErrMissingWorkerSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setRequired(t)
			t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
			_ = os.Unsetenv(tt.unset)

			_, err := Load()
			if err != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: \"8080\"\nbatch_size: 25\nrefresh_interval: 30m\nallowed_origins:\n  - http://localhost:5173\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9090") // env wins over file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected env override 9090, got %s", cfg.Port)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("expected batch size 25 from file, got %d", cfg.BatchSize)
	}
	if cfg.RefreshInterval != 30*time.Minute {
		t.Errorf("expected 30m refresh interval, got %v", cfg.RefreshInterval)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("unexpected allowed origins: %v", cfg.AllowedOrigins)
	}
}
