package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("CARTSAVER_SERVER_PORT")
		os.Unsetenv("CARTSAVER_SERVER_ENVIRONMENT")
		os.Unsetenv("CARTSAVER_FLYERS_API_KEY")
		os.Unsetenv("CARTSAVER_FLYERS_BASE_URL")
		os.Unsetenv("CARTSAVER_DATABASE_PATH")
		os.Unsetenv("CARTSAVER_CACHE_CAPACITY")
		os.Unsetenv("CARTSAVER_CACHE_TTL")
		os.Unsetenv("CARTSAVER_CACHE_SWEEP_INTERVAL")
		os.Unsetenv("CARTSAVER_MATCHING_MODE")
		os.Unsetenv("CARTSAVER_MATCHING_DEBUG")
		os.Unsetenv("CARTSAVER_SUMMARY_ENABLED")
		os.Unsetenv("CARTSAVER_SUMMARY_API_KEY")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Flyers.BaseURL != "https://backflipp.wishabi.com/flipp" {
			t.Errorf("Flyers.BaseURL = %s, want the flipp default", cfg.Flyers.BaseURL)
		}
		if cfg.Database.Path != "./cartsaver.db" {
			t.Errorf("Database.Path = %s, want ./cartsaver.db", cfg.Database.Path)
		}
		if cfg.Cache.Capacity != 1000 {
			t.Errorf("Cache.Capacity = %d, want 1000", cfg.Cache.Capacity)
		}
		if cfg.Cache.TTL != 30*time.Minute {
			t.Errorf("Cache.TTL = %v, want 30m", cfg.Cache.TTL)
		}
		if cfg.Cache.SweepInterval != 10*time.Minute {
			t.Errorf("Cache.SweepInterval = %v, want 10m", cfg.Cache.SweepInterval)
		}
		if cfg.Matching.Mode != "flexible" {
			t.Errorf("Matching.Mode = %s, want flexible", cfg.Matching.Mode)
		}
		if cfg.Summary.Enabled {
			t.Error("Summary.Enabled = true, want false by default")
		}
		if cfg.Summary.Model != "gpt-4o-mini" {
			t.Errorf("Summary.Model = %s, want gpt-4o-mini", cfg.Summary.Model)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CARTSAVER_SERVER_PORT", "9090")
		os.Setenv("CARTSAVER_SERVER_ENVIRONMENT", "production")
		os.Setenv("CARTSAVER_FLYERS_API_KEY", "flyer-key")
		os.Setenv("CARTSAVER_FLYERS_BASE_URL", "https://flyers.example.com")
		os.Setenv("CARTSAVER_DATABASE_PATH", "/var/lib/cartsaver/promos.db")
		os.Setenv("CARTSAVER_CACHE_CAPACITY", "250")
		os.Setenv("CARTSAVER_CACHE_TTL", "1h")
		os.Setenv("CARTSAVER_MATCHING_MODE", "strict")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Flyers.APIKey != "flyer-key" {
			t.Errorf("Flyers.APIKey = %s, want flyer-key", cfg.Flyers.APIKey)
		}
		if cfg.Flyers.BaseURL != "https://flyers.example.com" {
			t.Errorf("Flyers.BaseURL = %s, want https://flyers.example.com", cfg.Flyers.BaseURL)
		}
		if cfg.Database.Path != "/var/lib/cartsaver/promos.db" {
			t.Errorf("Database.Path = %s, want /var/lib/cartsaver/promos.db", cfg.Database.Path)
		}
		if cfg.Cache.Capacity != 250 {
			t.Errorf("Cache.Capacity = %d, want 250", cfg.Cache.Capacity)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.Matching.Mode != "strict" {
			t.Errorf("Matching.Mode = %s, want strict", cfg.Matching.Mode)
		}
	})

	t.Run("rejects invalid matching mode", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CARTSAVER_MATCHING_MODE", "aggressive")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want matching mode error")
		}
		if !strings.Contains(err.Error(), "matching mode") {
			t.Errorf("error = %v, want matching mode error", err)
		}
	})

	t.Run("rejects non-positive cache capacity", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CARTSAVER_CACHE_CAPACITY", "0")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want cache capacity error")
		}
		if !strings.Contains(err.Error(), "cache capacity") {
			t.Errorf("error = %v, want cache capacity error", err)
		}
	})

	t.Run("requires API key when summary is enabled", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CARTSAVER_SUMMARY_ENABLED", "true")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want summary API key error")
		}
		if !strings.Contains(err.Error(), "summary API key") {
			t.Errorf("error = %v, want summary API key error", err)
		}

		os.Setenv("CARTSAVER_SUMMARY_API_KEY", "sk-test")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil once key is set", err)
		}
		if !cfg.Summary.Enabled || cfg.Summary.APIKey != "sk-test" {
			t.Errorf("Summary = %+v, want enabled with key", cfg.Summary)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Flyers:   FlyersConfig{BaseURL: "https://flyers.example.com"},
			Database: DatabaseConfig{Path: "./test.db"},
			Cache:    CacheConfig{Capacity: 100, TTL: time.Minute},
			Matching: MatchingConfig{Mode: "flexible"},
		}
	}

	if err := validate(valid()); err != nil {
		t.Fatalf("validate() error = %v for a valid config", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing flyers base URL", func(c *Config) { c.Flyers.BaseURL = "" }},
		{"missing database path", func(c *Config) { c.Database.Path = "" }},
		{"zero cache capacity", func(c *Config) { c.Cache.Capacity = 0 }},
		{"negative cache ttl", func(c *Config) { c.Cache.TTL = -time.Second }},
		{"unknown matching mode", func(c *Config) { c.Matching.Mode = "fuzzy" }},
		{"summary enabled without key", func(c *Config) { c.Summary.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("validate() error = nil, want error")
			}
		})
	}
}
