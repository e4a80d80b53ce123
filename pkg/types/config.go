// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" validate:"gt=0"`

	// UserAgent is the User-Agent header sent with HTTP requests. Wikimedia
	// asks clients to identify themselves with a contact address.
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent" validate:"required"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 3).
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
}

// SourceConfig holds settings for the article source.
type SourceConfig struct {
	// Language selects the wiki edition, e.g. "en" or "ja".
	Language string `mapstructure:"language" json:"language" yaml:"language" validate:"required,alpha,min=2,max=12"`

	// SearchLimit caps the number of candidate titles requested (default 10).
	SearchLimit int `mapstructure:"search_limit" json:"search_limit" yaml:"search_limit" validate:"gte=1,lte=500"`

	// BaseURL overrides the API endpoint. Empty means
	// https://<language>.wikipedia.org/w/api.php.
	BaseURL string `mapstructure:"base_url" json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
}

// ModelConfig holds settings for the annotation model.
type ModelConfig struct {
	// Name selects the model. Empty means the built-in model for the source language.
	Name string `mapstructure:"name" json:"name" yaml:"name"`

	// CacheDir is where downloaded models are stored.
	CacheDir string `mapstructure:"cache_dir" json:"cache_dir" yaml:"cache_dir" validate:"required"`

	// BaseURL is the location remote models are downloaded from; the model
	// name is appended as the last path segment.
	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url" validate:"omitempty,url"`
}

// DisplayConfig controls how the result table is printed.
type DisplayConfig struct {
	// MaxRows is the row count above which the view is truncated (default 60).
	MaxRows int `mapstructure:"max_rows" json:"max_rows" yaml:"max_rows" validate:"gte=1"`

	// MinRows is the number of rows shown when truncated (default 10). It
	// is capped at MaxRows when rendering.
	MinRows int `mapstructure:"min_rows" json:"min_rows" yaml:"min_rows" validate:"gte=2"`
}

// ExportFormat selects the file format used when saving the table.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
)

// OutputConfig holds settings for saving the result table.
type OutputConfig struct {
	// Dir is the directory the export file is written to (default ".").
	Dir string `mapstructure:"dir" json:"dir" yaml:"dir" validate:"required"`

	// Format selects csv, json or yaml.
	Format ExportFormat `mapstructure:"format" json:"format" yaml:"format" validate:"oneof=csv json yaml"`
}

// StoreConfig holds settings for the optional run history database.
type StoreConfig struct {
	// Path is the SQLite database file. Empty disables run history.
	Path string `mapstructure:"path" json:"path,omitempty" yaml:"path,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// PipelineConfig groups all configuration for a run.
type PipelineConfig struct {
	HTTP    HTTPConfig    `mapstructure:"http" json:"http" yaml:"http"`
	Source  SourceConfig  `mapstructure:"source" json:"source" yaml:"source"`
	Model   ModelConfig   `mapstructure:"model" json:"model" yaml:"model"`
	Display DisplayConfig `mapstructure:"display" json:"display" yaml:"display"`
	Output  OutputConfig  `mapstructure:"output" json:"output" yaml:"output"`
	Store   StoreConfig   `mapstructure:"store" json:"store" yaml:"store"`
	Log     LogConfig     `mapstructure:"log" json:"log" yaml:"log"`
}
