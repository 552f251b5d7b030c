package config

import (
	"os"
	"time"

	"github.com/ccollicutt/bundlereport/pkg/report"
)

// Default values for configuration.
const (
	DefaultOutput         = "text"
	DefaultSortField      = "size"
	DefaultHistoryPath    = "bundlereport.db"
	DefaultWebhookTimeout = 10 * time.Second
	DefaultAssetIndent    = report.DefaultMinIndent
)

// Environment variable names.
const (
	EnvOutput      = "BUNDLEREPORT_OUTPUT"
	EnvHistoryPath = "BUNDLEREPORT_HISTORY_PATH"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sort: SortConfig{
			Field: DefaultSortField,
		},
		Output: DefaultOutput,
		Parser: ParserConfig{
			AssetIndent: DefaultAssetIndent,
		},
		History: HistoryConfig{
			Path: DefaultHistoryPath,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if out := os.Getenv(EnvOutput); out != "" {
		c.Output = out
	}
	if path := os.Getenv(EnvHistoryPath); path != "" {
		c.History.Path = path
	}
}
