package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Limiter LimiterConfig `mapstructure:"limiter"`
	Store   StoreConfig   `mapstructure:"store"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
	Update  UpdateConfig  `mapstructure:"update"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// LimiterConfig controls the global request rate limiter
type LimiterConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// StoreConfig locates the db file
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// FilterConfig contains filter engine settings and named presets
type FilterConfig struct {
	// TrimGenreTokens trims whitespace around each token of a genre query
	TrimGenreTokens bool              `mapstructure:"trim_genre_tokens"`
	CacheSize       int               `mapstructure:"cache_size"`
	Workers         int               `mapstructure:"workers"`
	BatchSize       int               `mapstructure:"batch_size"`
	Presets         map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// UpdateConfig points the self-updater at a release repository
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}
