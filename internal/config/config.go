package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/bardec/internal/barcode"
	"github.com/MeKo-Tech/bardec/internal/batch"
	"github.com/MeKo-Tech/bardec/internal/pdf"
)

// Config represents the complete configuration for bardec. Values come from
// the configuration file, BARDEC_* environment variables and command-line
// flags, in increasing order of precedence.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Decode DecodeConfig `mapstructure:"decode" yaml:"decode" json:"decode"`
	Batch  BatchConfig  `mapstructure:"batch" yaml:"batch" json:"batch"`
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
	HTTP   HTTPConfig   `mapstructure:"http" yaml:"http" json:"http"`
}

// DecodeConfig contains decoder settings shared by every worker.
type DecodeConfig struct {
	// Crop is "left,top,width,height"; empty decodes the whole image.
	Crop         string   `mapstructure:"crop" yaml:"crop" json:"crop"`
	Formats      []string `mapstructure:"formats" yaml:"formats" json:"formats"`
	TryHarder    bool     `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	AutoRotate   bool     `mapstructure:"auto_rotate" yaml:"auto_rotate" json:"auto_rotate"`
	AlsoInverted bool     `mapstructure:"also_inverted" yaml:"also_inverted" json:"also_inverted"`
	Charset      string   `mapstructure:"charset" yaml:"charset" json:"charset"`
	PDFPages     string   `mapstructure:"pdf_pages" yaml:"pdf_pages" json:"pdf_pages"`
}

// BatchConfig contains worker pool and input discovery settings.
type BatchConfig struct {
	Threads   int      `mapstructure:"threads" yaml:"threads" json:"threads"`
	Recursive bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include   []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude   []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
}

// OutputConfig contains result and run reporting settings.
type OutputConfig struct {
	DumpResults   bool   `mapstructure:"dump_results" yaml:"dump_results" json:"dump_results"`
	NormalizeText bool   `mapstructure:"normalize_text" yaml:"normalize_text" json:"normalize_text"`
	MetricsFile   string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`
	Progress      bool   `mapstructure:"progress" yaml:"progress" json:"progress"`
	Summary       bool   `mapstructure:"summary" yaml:"summary" json:"summary"`
}

// HTTPConfig contains settings for URL inputs.
type HTTPConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Decode: DecodeConfig{
			Formats:      []string{},
			TryHarder:    true,
			AutoRotate:   true,
			AlsoInverted: true,
		},
		Batch: BatchConfig{
			Threads: 1,
			Include: []string{},
			Exclude: []string{},
		},
		HTTP: HTTPConfig{
			TimeoutSec: int(batch.DefaultHTTPTimeout / time.Second),
		},
	}
}

// Validate checks the configuration and reports the first problem found.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if _, err := c.DecodeOptions(); err != nil {
		return err
	}

	if c.Decode.PDFPages != "" {
		if err := pdf.ValidatePageRange(c.Decode.PDFPages); err != nil {
			return fmt.Errorf("invalid pdf pages: %w", err)
		}
	}

	for _, pattern := range append(slices.Clone(c.Batch.Include), c.Batch.Exclude...) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
	}

	if c.HTTP.TimeoutSec <= 0 {
		return fmt.Errorf("invalid http timeout: %d (must be positive)", c.HTTP.TimeoutSec)
	}

	return nil
}

// DecodeOptions converts the decode section into backend options.
func (c *Config) DecodeOptions() (barcode.Options, error) {
	crop, err := barcode.ParseCrop(c.Decode.Crop)
	if err != nil {
		return barcode.Options{}, fmt.Errorf("invalid crop: %w", err)
	}

	formats, err := barcode.ParseFormats(c.Decode.Formats)
	if err != nil {
		return barcode.Options{}, fmt.Errorf("invalid formats: %w", err)
	}

	charset := ""
	if c.Decode.Charset != "" {
		if charset, err = barcode.CanonicalCharset(c.Decode.Charset); err != nil {
			return barcode.Options{}, fmt.Errorf("invalid charset: %w", err)
		}
	}

	return barcode.Options{
		Crop:         crop,
		Formats:      formats,
		TryHarder:    c.Decode.TryHarder,
		AutoRotate:   c.Decode.AutoRotate,
		AlsoInverted: c.Decode.AlsoInverted,
		CharacterSet: charset,
	}, nil
}

// EffectiveThreads returns the worker count actually used.
func (c *Config) EffectiveThreads() int {
	return batch.ClampThreads(c.Batch.Threads)
}

// HTTPTimeout returns the timeout for a single URL download.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTP.TimeoutSec <= 0 {
		return batch.DefaultHTTPTimeout
	}
	return time.Duration(c.HTTP.TimeoutSec) * time.Second
}
