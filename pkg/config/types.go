// Package config provides configuration loading and validation for bundlereport.
package config

import (
	"time"

	"github.com/ccollicutt/bundlereport/pkg/report"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Sort    SortConfig    `yaml:"sort"`
	Output  string        `yaml:"output"`
	Groups  []string      `yaml:"groups,omitempty"`
	MinSize string        `yaml:"min_size,omitempty"`
	Parser  ParserConfig  `yaml:"parser"`
	History HistoryConfig `yaml:"history"`

	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`

	// minBytes is MinSize converted to bytes (populated during validation).
	minBytes float64
}

// MinBytes returns the minimum entry size to display, in bytes.
func (c *Config) MinBytes() float64 {
	return c.minBytes
}

// SortConfig sets the order entries are displayed in.
type SortConfig struct {
	// Field is "size" or "address".
	Field string `yaml:"field"`

	// Ascending reverses the default largest-first order.
	Ascending bool `yaml:"ascending"`

	// field is the parsed Field (populated during validation).
	field report.SortField
}

// SortField returns the parsed sort field.
func (s *SortConfig) SortField() report.SortField {
	return s.field
}

// ParserConfig tunes report parsing.
type ParserConfig struct {
	// AssetIndent is the minimum number of leading tabs on an asset line.
	AssetIndent int `yaml:"asset_indent"`
}

// HistoryConfig locates the SQLite history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when the parse reported issues (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every parse.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending parse reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_issues" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
