// Package config loads the particlehands configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ayusman/particlehands/internal/capture"
	"github.com/ayusman/particlehands/internal/detector"
	"github.com/ayusman/particlehands/internal/field"
	"github.com/ayusman/particlehands/internal/gesture"
	"github.com/ayusman/particlehands/internal/logging"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the whole application configuration.
type Config struct {
	// Particles is the fixed particle count for the process lifetime.
	Particles int `yaml:"particles"`
	// FPS is the simulation frame rate.
	FPS int `yaml:"fps"`

	Log      logging.Config  `yaml:"log"`
	Camera   capture.Config  `yaml:"camera"`
	Detector detector.Config `yaml:"detector"`
	Motion   gesture.Config  `yaml:"motion"`
	Field    field.Config    `yaml:"field"`
	Glue     Glue            `yaml:"glue"`
	Server   Server          `yaml:"server"`
	Tray     Tray            `yaml:"tray"`
}

// Glue configures how stable gestures drive shape changes.
type Glue struct {
	// Texts are cycled through on each new pinch.
	Texts []string `yaml:"texts"`
	// DebounceFrames is how many consecutive frames a gesture must hold
	// before its shape is applied.
	DebounceFrames int `yaml:"debounce_frames"`
	// ExplodeOnRelease triggers an explosion on a fist to open transition.
	ExplodeOnRelease bool `yaml:"explode_on_release"`
	// MotionIdleAfter idles detection after this long without camera motion.
	// Zero keeps detection running at the active rate.
	MotionIdleAfter time.Duration `yaml:"motion_idle_after"`
	// MotionThreshold is the percentage of changed pixels that counts as motion.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// Server configures the HTTP control surface.
type Server struct {
	Addr string `yaml:"addr"`
	// StreamEvery broadcasts one frame out of every StreamEvery simulated.
	StreamEvery int `yaml:"stream_every"`
}

// Tray configures the system tray menu.
type Tray struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the reference configuration.
func Default() Config {
	fc := field.DefaultConfig()
	return Config{
		Particles: fc.Count,
		FPS:       60,
		Log:       logging.DefaultConfig(),
		Camera:    capture.DefaultConfig(),
		Detector:  detector.DefaultConfig(),
		Motion:    gesture.DefaultConfig(),
		Field:     fc,
		Glue: Glue{
			Texts:            []string{"HELLO", "PARTICLES", "GO"},
			DebounceFrames:   3,
			ExplodeOnRelease: true,
			MotionThreshold:  capture.DefaultMotionThreshold,
		},
		Server: Server{Addr: "127.0.0.1:8765", StreamEvery: 2},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Field.Count = cfg.Particles
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Particles < 1 {
		errs = append(errs, fmt.Errorf("particles %d must be at least 1", c.Particles))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps %d must be positive", c.FPS))
	}
	if c.Motion.Alpha <= 0 || c.Motion.Alpha >= 1 {
		errs = append(errs, fmt.Errorf("motion.alpha %v must be in (0,1)", c.Motion.Alpha))
	}
	if c.Motion.HistorySize < 1 || c.Motion.HistorySize > gesture.MaxHistory {
		errs = append(errs, fmt.Errorf("motion.history %d must be in [1,%d]", c.Motion.HistorySize, gesture.MaxHistory))
	}
	if c.Glue.DebounceFrames < 0 {
		errs = append(errs, fmt.Errorf("glue.debounce_frames %d must not be negative", c.Glue.DebounceFrames))
	}
	if c.Detector.MaxHands < 1 || c.Detector.MaxHands > 2 {
		errs = append(errs, fmt.Errorf("detector.max_hands %d must be 1 or 2", c.Detector.MaxHands))
	}

	fc := c.Field
	fc.Count = c.Particles
	if err := fc.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("field: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
