package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g. MOVIEPICKER_SERVER_PORT
const EnvPrefix = "MOVIEPICKER"

// Load loads the configuration. An explicit configPath must exist; without
// one the standard locations are searched and defaults apply when no file
// is found.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".moviepicker"))
		}

		// Check /etc
		v.AddConfigPath("/etc/moviepicker/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "1m")
	v.SetDefault("server.shutdown_timeout", "20s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Limiter defaults
	v.SetDefault("limiter.enabled", false)
	v.SetDefault("limiter.rps", 2)
	v.SetDefault("limiter.burst", 4)

	// Store defaults
	v.SetDefault("store.path", "./data/db.json")

	// Filter defaults
	v.SetDefault("filter.trim_genre_tokens", false)
	v.SetDefault("filter.cache_size", 100)
	v.SetDefault("filter.workers", 0)
	v.SetDefault("filter.batch_size", 500)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("update.repository", "s0up4200/moviepicker")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", cfg.Server.Port)
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[cfg.Server.Env] {
		return fmt.Errorf("invalid server.env: %s", cfg.Server.Env)
	}

	if cfg.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}

	if cfg.Limiter.Enabled && (cfg.Limiter.RPS <= 0 || cfg.Limiter.Burst <= 0) {
		return fmt.Errorf("limiter.rps and limiter.burst must be positive when the limiter is enabled")
	}

	if strings.TrimSpace(cfg.Store.Path) == "" {
		return fmt.Errorf("store.path is required")
	}

	if cfg.Filter.CacheSize < 0 || cfg.Filter.Workers < 0 || cfg.Filter.BatchSize < 0 {
		return fmt.Errorf("filter.cache_size, filter.workers and filter.batch_size must not be negative")
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset '%s' has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
