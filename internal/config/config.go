// Package config handles exporter configuration loading and management.
package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/rawmesh/internal/model"
	"github.com/Faultbox/rawmesh/pkg/formats"
)

// MaxUVChannels is the most UV channels the renderer binds.
const MaxUVChannels = 3

// Config holds all tool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ExportConfig holds settings for scene and mesh export.
type ExportConfig struct {
	OutputDir     string `yaml:"output_dir" toml:"output_dir"`         // Mesh directory; empty means next to the scene
	FormatVersion int    `yaml:"format_version" toml:"format_version"` // Mesh container version
	Policy        string `yaml:"policy" toml:"policy"`                 // "dedup" or "flat"
	IncludeUVs    bool   `yaml:"include_uvs" toml:"include_uvs"`
	MaxUVChannels int    `yaml:"max_uv_channels" toml:"max_uv_channels"`
	DefaultShader string `yaml:"default_shader" toml:"default_shader"`
	Triangulate   bool   `yaml:"triangulate" toml:"triangulate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	LogFile    string `yaml:"log_file" toml:"log_file"` // Empty disables file logging
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
	Compress   bool   `yaml:"compress" toml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			OutputDir:     "",
			FormatVersion: int(formats.CurrentMeshVersion),
			Policy:        model.PolicyDedup.String(),
			IncludeUVs:    true,
			MaxUVChannels: MaxUVChannels,
			DefaultShader: formats.DefaultShader,
			Triangulate:   true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  20,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	e := &c.Export
	if !formats.MeshVersion(e.FormatVersion).Valid() {
		errs = append(errs, fmt.Errorf("export.format_version: unsupported version %d", e.FormatVersion))
	}
	if _, ok := model.ParsePolicy(e.Policy); !ok {
		errs = append(errs, fmt.Errorf("export.policy: unknown policy %q", e.Policy))
	}
	if e.MaxUVChannels < 0 || e.MaxUVChannels > MaxUVChannels {
		errs = append(errs, fmt.Errorf("export.max_uv_channels: %d outside 0..%d", e.MaxUVChannels, MaxUVChannels))
	}
	l := &c.Logging
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("logging: negative rotation setting"))
	}
	return multierr.Combine(errs...)
}

// MeshVersion returns the configured container version.
func (e *ExportConfig) MeshVersion() formats.MeshVersion {
	return formats.MeshVersion(e.FormatVersion)
}

// MergePolicy returns the configured merge policy, dedup when unrecognized.
func (e *ExportConfig) MergePolicy() model.Policy {
	p, _ := model.ParsePolicy(e.Policy)
	return p
}

// UVChannelLimit returns how many UV channels an exported mesh may carry.
func (e *ExportConfig) UVChannelLimit() int {
	if !e.IncludeUVs {
		return 0
	}
	return e.MaxUVChannels
}
