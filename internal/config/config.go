// Package config handles meshc configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/yuravashuk/GPF/pkg/encoding"
	"github.com/yuravashuk/GPF/pkg/mesh"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all importer settings.
type Config struct {
	Import   ImportConfig  `yaml:"import"`
	Textures TextureConfig `yaml:"textures"`
	Output   OutputConfig  `yaml:"output"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ImportConfig holds welding and tangent settings.
type ImportConfig struct {
	Tangents           string  `yaml:"tangents"` // overwrite, legacy or accumulate
	TangentEpsilon     float32 `yaml:"tangent_epsilon"`
	AcceptZeroTexcoord bool    `yaml:"accept_zero_texcoord"`
	KeepTexcoordV      bool    `yaml:"keep_texcoord_v"`
	NameEncoding       string  `yaml:"name_encoding"` // WHATWG label, empty for UTF-8
}

// TextureConfig holds texture lookup settings.
type TextureConfig struct {
	Probe       bool     `yaml:"probe"`
	WarnNPOT    bool     `yaml:"warn_npot"`
	SearchPaths []string `yaml:"search_paths"` // Searched after the mesh's directory
}

// OutputConfig holds where compiled geometry goes.
type OutputConfig struct {
	Dir      string `yaml:"dir"` // Empty writes next to the source
	Manifest bool   `yaml:"manifest"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Tangents:       mesh.TangentOverwrite.String(),
			TangentEpsilon: mesh.DefaultTangentEpsilon,
		},
		Textures: TextureConfig{
			Probe:    true,
			WarnNPOT: true,
		},
		Output: OutputConfig{
			Manifest: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that yaml cannot check for us.
func (c *Config) Validate() error {
	if _, err := mesh.ParseTangentMode(c.Import.Tangents); err != nil {
		return fmt.Errorf("%w: import.tangents: %w", ErrInvalid, err)
	}
	if c.Import.TangentEpsilon < 0 {
		return fmt.Errorf("%w: import.tangent_epsilon must not be negative, got %g", ErrInvalid, c.Import.TangentEpsilon)
	}
	if err := encoding.Validate(c.Import.NameEncoding); err != nil {
		return fmt.Errorf("%w: import.name_encoding: %w", ErrInvalid, err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// WeldOptions returns the welder settings.
func (c ImportConfig) WeldOptions() mesh.WeldOptions {
	return mesh.WeldOptions{
		AcceptZeroTexcoord: c.AcceptZeroTexcoord,
		KeepTexcoordV:      c.KeepTexcoordV,
	}
}

// TangentOptions returns the tangent builder settings.
func (c ImportConfig) TangentOptions() (mesh.TangentOptions, error) {
	mode, err := mesh.ParseTangentMode(c.Tangents)
	if err != nil {
		return mesh.TangentOptions{}, err
	}
	return mesh.TangentOptions{Mode: mode, Epsilon: c.TangentEpsilon}, nil
}
