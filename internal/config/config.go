// Package config loads the flip-preview configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/caps"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
)

// Config is the complete flip-preview configuration
type Config struct {
	Method   string       `yaml:"method"`    // property nick, e.g. clockwise, automatic
	LogLevel string       `yaml:"log_level"` // debug, info, warn, error
	DryRun   bool         `yaml:"dry_run"`   // negotiate on the in-memory model only
	Source   SourceConfig `yaml:"source"`
	Sink     SinkConfig   `yaml:"sink"`

	// Flip is Method resolved by Validate
	Flip orientation.Method `yaml:"-"`
}

// SourceConfig describes the test source feeding the filter
type SourceConfig struct {
	Pattern          string `yaml:"pattern"`            // videotestsrc pattern nick
	Width            int    `yaml:"width"`              // pixels
	Height           int    `yaml:"height"`             // pixels
	Framerate        string `yaml:"framerate"`          // fraction, e.g. 30/1
	PixelAspectRatio string `yaml:"pixel_aspect_ratio"` // fraction, e.g. 1/1
	OrientationTag   string `yaml:"orientation_tag"`    // injected image-orientation value (optional)
	NumBuffers       int    `yaml:"num_buffers"`        // -1 runs until interrupted
}

// SinkConfig describes the video sink
type SinkConfig struct {
	Element string `yaml:"element"` // e.g. glimagesink, fakesink
	Sync    bool   `yaml:"sync"`
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration data
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns a validated configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	if err := Validate(cfg); err != nil {
		panic(err) // defaults must validate
	}
	return cfg
}

// GLCaps returns the committed input format the filter sees: the source
// geometry as RGBA 2D GL textures.
func (c *Config) GLCaps() (caps.Caps, error) {
	return caps.Parse(fmt.Sprintf(
		"video/x-raw(memory:GLMemory), format=(string)RGBA, width=(int)%d, height=(int)%d, "+
			"framerate=(fraction)%s, pixel-aspect-ratio=(fraction)%s, texture-target=(string)2D",
		c.Source.Width, c.Source.Height, c.Source.Framerate, c.Source.PixelAspectRatio))
}

// SourceCaps returns the system memory caps forced on the test source.
func (c *Config) SourceCaps() string {
	return fmt.Sprintf("video/x-raw,width=%d,height=%d,framerate=%s,pixel-aspect-ratio=%s",
		c.Source.Width, c.Source.Height, c.Source.Framerate, c.Source.PixelAspectRatio)
}
