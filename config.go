// config.go
package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const envPrefix = "SHEETCALC_"

// Config holds all settings for the CLI and the web server.
type Config struct {
	// Input
	DefaultFile string `env:"DEFAULT_FILE" envDefault:"data.csv"`
	Delimiter   string `env:"DELIMITER" envDefault:","`
	NumericMode string `env:"NUMERIC_MODE" envDefault:"strict"`

	// Web server
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxRows         int           `env:"MAX_ROWS" envDefault:"10000"`
	MaxWorkbooks    int           `env:"MAX_WORKBOOKS" envDefault:"32"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
}

// LoadConfig reads an optional .env file, then the SHEETCALC_* environment.
func LoadConfig() (*Config, error) {
	// a missing .env is normal
	_ = godotenv.Load()
	return parseConfig(env.Options{Prefix: envPrefix})
}

func parseConfig(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DefaultFile == "" {
		return fmt.Errorf("DEFAULT_FILE is required")
	}

	if c.Delimiter == "" {
		return fmt.Errorf("DELIMITER must not be empty")
	}

	if _, err := ParseNumericMode(c.NumericMode); err != nil {
		return fmt.Errorf("NUMERIC_MODE: %w", err)
	}

	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	if c.MaxRows <= 0 {
		return fmt.Errorf("MAX_ROWS must be positive")
	}

	if c.MaxWorkbooks <= 0 {
		return fmt.Errorf("MAX_WORKBOOKS must be positive")
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// Mode returns the configured numeric mode. Validate has already checked it.
func (c *Config) Mode() NumericMode {
	mode, err := ParseNumericMode(c.NumericMode)
	if err != nil {
		return NumericStrict
	}
	return mode
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{DefaultFile=%s, Delimiter=%q, NumericMode=%s, HTTPAddr=%s, MaxUploadBytes=%d, "+
			"MaxRows=%d, MaxWorkbooks=%d, ShutdownTimeout=%s, LogLevel=%s}",
		c.DefaultFile,
		c.Delimiter,
		c.NumericMode,
		c.HTTPAddr,
		c.MaxUploadBytes,
		c.MaxRows,
		c.MaxWorkbooks,
		c.ShutdownTimeout,
		c.LogLevel,
	)
}
