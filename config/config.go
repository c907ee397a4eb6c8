package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Flyers   FlyersConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Matching MatchingConfig
	Summary  SummaryConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// FlyersConfig holds flyer-search API configuration
type FlyersConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig holds the promotion store configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig holds result-cache configuration
type CacheConfig struct {
	Capacity      int           `mapstructure:"capacity"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// MatchingConfig holds match-engine configuration
type MatchingConfig struct {
	Mode               string `mapstructure:"mode"`
	EnableDebugLogging bool   `mapstructure:"debug"`
}

// SummaryConfig holds the LLM summary generator configuration
type SummaryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cartsaver/")

	// Environment variable settings
	v.SetEnvPrefix("CARTSAVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Flyer-search defaults. The empty api_key default registers the key so
	// the env variable binds through AutomaticEnv.
	v.SetDefault("flyers.api_key", "")
	v.SetDefault("flyers.base_url", "https://backflipp.wishabi.com/flipp")

	// Database defaults
	v.SetDefault("database.path", "./cartsaver.db")

	// Cache defaults
	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("cache.sweep_interval", "10m")

	// Matching defaults
	v.SetDefault("matching.mode", "flexible")
	v.SetDefault("matching.debug", false)

	// Summary defaults
	v.SetDefault("summary.enabled", false)
	v.SetDefault("summary.api_key", "")
	v.SetDefault("summary.base_url", "https://api.openai.com")
	v.SetDefault("summary.model", "gpt-4o-mini")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Flyers.BaseURL == "" {
		return fmt.Errorf("flyer search base URL is required (set CARTSAVER_FLYERS_BASE_URL)")
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required (set CARTSAVER_DATABASE_PATH)")
	}

	if config.Cache.Capacity <= 0 {
		return fmt.Errorf("cache capacity must be positive, got: %d", config.Cache.Capacity)
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got: %s", config.Cache.TTL)
	}

	if config.Matching.Mode != "flexible" && config.Matching.Mode != "strict" {
		return fmt.Errorf("matching mode must be 'flexible' or 'strict', got: %s", config.Matching.Mode)
	}

	if config.Summary.Enabled && config.Summary.APIKey == "" {
		return fmt.Errorf("summary API key is required when summary is enabled (set CARTSAVER_SUMMARY_API_KEY)")
	}

	return nil
}
