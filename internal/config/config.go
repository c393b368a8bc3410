// Package config loads and saves the application configuration from
// ~/.config/pagetag/config.yaml. Missing files and unset fields fall
// back to defaults, so a fresh install runs without any setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pagetag/pkg/types"
)

// Config is the application configuration.
type Config struct {
	Viewer struct {
		Margin          float64 `yaml:"margin"`           // Page margin inside the viewer, pixels
		ClickThreshold  float64 `yaml:"click_threshold"`  // Max drag extent still counted as a click, pixels
		LineTolerance   float64 `yaml:"line_tolerance"`   // Vertical distance treated as one text line, points
		RasterTolerance float64 `yaml:"raster_tolerance"` // Allowed raster size drift before re-render, pixels
	} `yaml:"viewer"`
	Tags struct {
		SidecarSuffix string            `yaml:"sidecar_suffix"` // Appended to the PDF base name for the tag file
		Colors        map[string]string `yaml:"colors"`         // Tag name to hex color
	} `yaml:"tags"`
	Export struct {
		Suffix string `yaml:"suffix"` // Inserted before .pdf in the output name
	} `yaml:"export"`
	Watch struct {
		Enabled bool `yaml:"enabled"` // Reload tags when the sidecar changes on disk
	} `yaml:"watch"`
	Debug bool `yaml:"debug"` // Verbose logging
}

// LoadConfig loads configuration from the default location
// (~/.config/pagetag/config.yaml).
func LoadConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(filepath.Join(home, ".config", "pagetag", "config.yaml"))
}

// LoadConfigFile loads configuration from a specific file path. If the
// file doesn't exist, returns the default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config so unset fields keep defaults.
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if tempCfg.Viewer.Margin > 0 {
		cfg.Viewer.Margin = tempCfg.Viewer.Margin
	}
	if tempCfg.Viewer.ClickThreshold > 0 {
		cfg.Viewer.ClickThreshold = tempCfg.Viewer.ClickThreshold
	}
	if tempCfg.Viewer.LineTolerance > 0 {
		cfg.Viewer.LineTolerance = tempCfg.Viewer.LineTolerance
	}
	if tempCfg.Viewer.RasterTolerance > 0 {
		cfg.Viewer.RasterTolerance = tempCfg.Viewer.RasterTolerance
	}
	if tempCfg.Tags.SidecarSuffix != "" {
		cfg.Tags.SidecarSuffix = tempCfg.Tags.SidecarSuffix
	}
	for name, hex := range tempCfg.Tags.Colors {
		cfg.Tags.Colors[name] = hex
	}
	if tempCfg.Export.Suffix != "" {
		cfg.Export.Suffix = tempCfg.Export.Suffix
	}
	cfg.Watch.Enabled = tempCfg.Watch.Enabled
	cfg.Debug = tempCfg.Debug

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns the configuration used when nothing is on disk.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Viewer.Margin = 10
	cfg.Viewer.ClickThreshold = 3
	cfg.Viewer.LineTolerance = 5
	cfg.Viewer.RasterTolerance = 1

	cfg.Tags.SidecarSuffix = "_pdf-tagger-sav.json"
	cfg.Tags.Colors = map[string]string{
		"green":  "#4CAF50",
		"yellow": "#FFEB3B",
		"red":    "#F44336",
		"none":   "#333333",
	}

	cfg.Export.Suffix = "_filtered"
	cfg.Watch.Enabled = true

	return cfg
}

// SaveConfig saves the configuration to the specified file, creating
// parent directories as needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	if c.Viewer.Margin < 0 {
		return fmt.Errorf("viewer margin must be >= 0")
	}
	if c.Viewer.ClickThreshold < 0 {
		return fmt.Errorf("click threshold must be >= 0")
	}
	if c.Viewer.LineTolerance <= 0 {
		return fmt.Errorf("line tolerance must be > 0")
	}
	if c.Viewer.RasterTolerance < 0 {
		return fmt.Errorf("raster tolerance must be >= 0")
	}

	for _, tag := range types.AllTags {
		hex, ok := c.Tags.Colors[tag.String()]
		if !ok {
			return fmt.Errorf("missing color for tag %q", tag)
		}
		if len(hex) != 7 || hex[0] != '#' {
			return fmt.Errorf("tag %q: color %q is not a #RRGGBB value", tag, hex)
		}
	}

	if c.Export.Suffix == "" {
		return fmt.Errorf("export suffix must not be empty")
	}
	return nil
}

// TagColor returns the configured hex color for a tag.
func (c *Config) TagColor(tag types.Tag) string {
	if hex, ok := c.Tags.Colors[tag.String()]; ok {
		return hex
	}
	return c.Tags.Colors[types.TagNone.String()]
}

// NewTestConfig creates a configuration instance for testing purposes.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Watch.Enabled = false
	cfg.Debug = true
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}
