// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/framestep/pkg/player"
)

// Config represents the full configuration for framestep.
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// Backends
	Backend     string `yaml:"backend"` // ffmpeg or opencv
	Sink        string `yaml:"sink"`    // terminal, sdl, snapshot or none
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Playback
	SpeedHz        float64 `yaml:"speed_hz"`
	SkipFrames     bool    `yaml:"skip_frames"`
	JumpSize       int     `yaml:"jump_size"`
	Transpose      bool    `yaml:"transpose"`
	ReopenPerSeek  bool    `yaml:"reopen_per_seek"`
	MaxReadRetries int     `yaml:"max_read_retries"`

	// Frame count probe
	Probe ProbeConfig `yaml:"probe"`

	// Display
	SnapshotDir       string `yaml:"snapshot_dir"`
	BackgroundColor   string `yaml:"background_color"`
	OverlayIntervalMs int    `yaml:"overlay_interval_ms"`
	PreviewWidth      int    `yaml:"preview_width"`
}

// ProbeConfig represents the frame count search settings.
type ProbeConfig struct {
	MaxFrameBound   int `yaml:"max_frame_bound"`
	ExtraIterations int `yaml:"extra_iterations"`
}

// Backends and sinks accepted in Config.
var (
	Backends = []string{"ffmpeg", "opencv"}
	Sinks    = []string{"terminal", "sdl", "snapshot", "none"}
)

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Logging
		LogLevel: "info",

		// Backends
		Backend: "ffmpeg",
		Sink:    "terminal",

		// Playback
		SpeedHz:        50,
		SkipFrames:     true,
		JumpSize:       20,
		ReopenPerSeek:  true,
		MaxReadRetries: 3,

		// Frame count probe
		Probe: ProbeConfig{
			MaxFrameBound:   1 << 22,
			ExtraIterations: 2,
		},

		// Display
		SnapshotDir:       "./snapshots",
		BackgroundColor:   "#141428",
		OverlayIntervalMs: 10,
		PreviewWidth:      80,
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if !contains(Backends, c.Backend) {
		return fmt.Errorf("unknown backend %q (want one of %v)", c.Backend, Backends)
	}
	if !contains(Sinks, c.Sink) {
		return fmt.Errorf("unknown sink %q (want one of %v)", c.Sink, Sinks)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ParseColor parses a hex color string to color.Color.
func ParseColor(hex string) color.Color {
	if len(hex) == 0 {
		return color.Black
	}

	if hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 {
		return color.Black
	}

	return color.RGBA{
		R: hexValue(hex[0])<<4 | hexValue(hex[1]),
		G: hexValue(hex[2])<<4 | hexValue(hex[3]),
		B: hexValue(hex[4])<<4 | hexValue(hex[5]),
		A: 255,
	}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// ToPlayerConfig converts Config to player.Config.
func (c Config) ToPlayerConfig() player.Config {
	return player.NewConfigBuilder().
		WithSpeed(c.SpeedHz).
		WithSkipFrames(c.SkipFrames).
		WithJumpSize(c.JumpSize).
		WithTranspose(c.Transpose).
		WithMaxReadRetries(c.MaxReadRetries).
		WithMaxFrameBound(c.Probe.MaxFrameBound).
		WithExtraIterations(c.Probe.ExtraIterations).
		WithOverlayInterval(time.Duration(c.OverlayIntervalMs) * time.Millisecond).
		Build()
}
