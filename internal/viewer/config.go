// Package viewer holds the sprite viewer configuration.
package viewer

import (
	"errors"
	"fmt"
	"os"

	"github.com/retroblast-engine/aseanim/atlas"
	"gopkg.in/yaml.v3"
)

// Config is the viewer configuration file.
type Config struct {
	Window WindowConfig `yaml:"window"`
	TPS    int          `yaml:"tps"`   // Updates per second
	Scale  float64      `yaml:"scale"` // Sprite zoom

	Dir   string `yaml:"dir"`   // Directory sprites are read from
	File  string `yaml:"file"`  // Sprite to show, relative to Dir
	Tag   string `yaml:"tag"`   // Tag to start with, empty plays every frame
	Watch bool   `yaml:"watch"` // Reload the sprite when it changes on disk

	Atlas AtlasConfig `yaml:"atlas"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type AtlasConfig struct {
	Strategy string `yaml:"strategy"`
	Padding  int    `yaml:"padding"`
	Dedupe   bool   `yaml:"dedupe"`
}

// LoadConfig reads the configuration at path. An empty path gives the
// defaults.
func LoadConfig(path string) (*Config, error) {
	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Defaults
	if config.Window.Width == 0 {
		config.Window.Width = 640
	}
	if config.Window.Height == 0 {
		config.Window.Height = 480
	}
	if config.Window.Title == "" {
		config.Window.Title = "aseview"
	}
	if config.TPS == 0 {
		config.TPS = 60
	}
	if config.Scale == 0 {
		config.Scale = 4
	}
	if config.Dir == "" {
		config.Dir = "."
	}
	if config.Atlas.Strategy == "" {
		config.Atlas.Strategy = "grid"
	}

	return &config, nil
}

// Validate reports settings the viewer can't run with.
func (c *Config) Validate() error {
	if c.File == "" {
		return errors.New("no sprite file configured")
	}
	if c.TPS < 0 || c.Scale < 0 || c.Window.Width < 0 || c.Window.Height < 0 {
		return errors.New("negative window size, tps or scale")
	}
	return nil
}

// Options returns the packing options of the atlas section.
func (a AtlasConfig) Options() ([]atlas.Option, error) {
	strategy, err := atlas.ParseStrategy(a.Strategy)
	if err != nil {
		return nil, err
	}
	return []atlas.Option{
		atlas.WithStrategy(strategy),
		atlas.WithPadding(a.Padding),
		atlas.WithDedupe(a.Dedupe),
	}, nil
}
