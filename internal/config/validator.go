package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("config: invalid value")

var fractionPattern = regexp.MustCompile(`^[0-9]+/[1-9][0-9]*$`)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration and fills defaults
func Validate(cfg *Config) error {
	if cfg.Method == "" {
		cfg.Method = orientation.Identity.String()
	}
	m, err := orientation.ParseMethod(cfg.Method)
	if err != nil {
		return fmt.Errorf("%w: method: %w", ErrInvalid, err)
	}
	cfg.Flip = m

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !logLevels[cfg.LogLevel] {
		return fmt.Errorf("%w: log_level %q (must be debug, info, warn or error)", ErrInvalid, cfg.LogLevel)
	}

	if err := validateSource(&cfg.Source); err != nil {
		return err
	}

	if cfg.Sink.Element == "" {
		cfg.Sink.Element = "glimagesink"
	}
	return nil
}

func validateSource(src *SourceConfig) error {
	if src.Pattern == "" {
		src.Pattern = "smpte"
	}

	// Zero means "use the default"; negative sizes are errors
	if src.Width == 0 {
		src.Width = 1280
	}
	if src.Height == 0 {
		src.Height = 720
	}
	if src.Width < 0 || src.Height < 0 {
		return fmt.Errorf("%w: source size %dx%d", ErrInvalid, src.Width, src.Height)
	}

	if src.Framerate == "" {
		src.Framerate = "30/1"
	}
	if !fractionPattern.MatchString(src.Framerate) {
		return fmt.Errorf("%w: source.framerate %q must be N/D", ErrInvalid, src.Framerate)
	}
	if src.PixelAspectRatio == "" {
		src.PixelAspectRatio = "1/1"
	}
	if !fractionPattern.MatchString(src.PixelAspectRatio) || src.PixelAspectRatio[0] == '0' {
		return fmt.Errorf("%w: source.pixel_aspect_ratio %q must be N/D with N > 0", ErrInvalid, src.PixelAspectRatio)
	}

	if src.OrientationTag != "" {
		if _, ok := orientation.FromTag(src.OrientationTag); !ok {
			return fmt.Errorf("%w: source.orientation_tag %q", ErrInvalid, src.OrientationTag)
		}
	}

	if src.NumBuffers == 0 {
		src.NumBuffers = -1
	}
	return nil
}
