package main

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestConfig(vars map[string]string) (*Config, error) {
	return parseConfig(env.Options{Prefix: envPrefix, Environment: vars})
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := parseTestConfig(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "data.csv", cfg.DefaultFile)
	assert.Equal(t, ",", cfg.Delimiter)
	assert.Equal(t, NumericStrict, cfg.Mode())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 10000, cfg.MaxRows)
	assert.Equal(t, 32, cfg.MaxWorkbooks)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestConfigFromEnvironment(t *testing.T) {
	cfg, err := parseTestConfig(map[string]string{
		"SHEETCALC_DEFAULT_FILE":     "sales.csv",
		"SHEETCALC_DELIMITER":        ";",
		"SHEETCALC_NUMERIC_MODE":     "loose",
		"SHEETCALC_HTTP_ADDR":        "127.0.0.1:9000",
		"SHEETCALC_MAX_ROWS":         "50",
		"SHEETCALC_SHUTDOWN_TIMEOUT": "3s",
		"SHEETCALC_LOG_LEVEL":        "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "sales.csv", cfg.DefaultFile)
	assert.Equal(t, ";", cfg.Delimiter)
	assert.Equal(t, NumericLoose, cfg.Mode())
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, 50, cfg.MaxRows)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Contains(t, cfg.String(), "NumericMode=loose")
}

func TestConfigInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"numeric mode": {"SHEETCALC_NUMERIC_MODE": "fuzzy"},
		"log level":    {"SHEETCALC_LOG_LEVEL": "verbose"},
		"max rows":     {"SHEETCALC_MAX_ROWS": "0"},
		"workbooks":    {"SHEETCALC_MAX_WORKBOOKS": "-1"},
		"upload":       {"SHEETCALC_MAX_UPLOAD_BYTES": "0"},
		"timeout":      {"SHEETCALC_SHUTDOWN_TIMEOUT": "soon"},
		"rows type":    {"SHEETCALC_MAX_ROWS": "many"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseTestConfig(vars)
			assert.Error(t, err)
		})
	}
}

func TestConfigValidateEmptyDelimiter(t *testing.T) {
	cfg, err := parseTestConfig(map[string]string{})
	require.NoError(t, err)
	cfg.Delimiter = ""
	assert.Error(t, cfg.Validate())
}
