// Package player provides a high-level API for frame-stepping playback.
package player

import (
	"time"

	"github.com/user/framestep/pkg/probe"
	"github.com/user/framestep/pkg/scheduler"
	"github.com/user/framestep/pkg/transport"
)

// Config represents the playback configuration.
type Config struct {
	// Playback
	SpeedHz    float64 // Requested frames per second (default: 50)
	SkipFrames bool    // Jump ahead when rendering falls behind (default: true)
	JumpSize   int     // Frames moved by a jump (min: 1)
	Transpose  bool    // Swap the image axes before display

	// Decoding
	MaxReadRetries int // Consecutive read misses that end a session (min: 1)

	// Frame count probe
	MaxFrameBound   int // Upper bound of the binary search (default: 1<<22)
	ExtraIterations int // Iterations beyond ceil(log2(MaxFrameBound))

	// UI
	OverlayInterval time.Duration // Minimum time between timeline marker redraws
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SpeedHz:    50,
		SkipFrames: true,
		JumpSize:   20,

		MaxReadRetries: scheduler.DefaultMaxReadRetries,

		MaxFrameBound:   probe.DefaultMaxFrameBound,
		ExtraIterations: probe.DefaultExtraIterations,

		OverlayInterval: 10 * time.Millisecond,
	}
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: DefaultConfig()}
}

// Build returns the final Config, replacing invalid values.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config
	def := DefaultConfig()

	if !(cfg.SpeedHz > 0) {
		cfg.SpeedHz = def.SpeedHz
	}
	if cfg.JumpSize < 1 {
		cfg.JumpSize = 1
	}
	if cfg.MaxReadRetries < 1 {
		cfg.MaxReadRetries = 1
	}
	if cfg.MaxFrameBound < 1 {
		cfg.MaxFrameBound = def.MaxFrameBound
	}
	if cfg.ExtraIterations < 0 {
		cfg.ExtraIterations = 0
	}
	if cfg.OverlayInterval <= 0 {
		cfg.OverlayInterval = def.OverlayInterval
	}

	return cfg
}

// WithSpeed sets the playback speed in Hz.
// Values <= 0 fall back to the default.
func (b *ConfigBuilder) WithSpeed(hz float64) *ConfigBuilder {
	b.config.SpeedHz = hz
	return b
}

// WithSkipFrames enables or disables catching up with wall-clock time.
func (b *ConfigBuilder) WithSkipFrames(enabled bool) *ConfigBuilder {
	b.config.SkipFrames = enabled
	return b
}

// WithJumpSize sets the number of frames a jump moves.
// Values below 1 will be forced to 1.
func (b *ConfigBuilder) WithJumpSize(frames int) *ConfigBuilder {
	b.config.JumpSize = frames
	return b
}

// WithTranspose swaps image axes before display.
func (b *ConfigBuilder) WithTranspose(transpose bool) *ConfigBuilder {
	b.config.Transpose = transpose
	return b
}

// WithMaxReadRetries sets how many consecutive read misses end a session.
// Values below 1 will be forced to 1.
func (b *ConfigBuilder) WithMaxReadRetries(n int) *ConfigBuilder {
	b.config.MaxReadRetries = n
	return b
}

// WithMaxFrameBound sets the probe's search bound.
func (b *ConfigBuilder) WithMaxFrameBound(n int) *ConfigBuilder {
	b.config.MaxFrameBound = n
	return b
}

// WithExtraIterations sets the probe's extra iterations.
func (b *ConfigBuilder) WithExtraIterations(n int) *ConfigBuilder {
	b.config.ExtraIterations = n
	return b
}

// WithOverlayInterval sets the minimum time between timeline marker redraws.
func (b *ConfigBuilder) WithOverlayInterval(d time.Duration) *ConfigBuilder {
	b.config.OverlayInterval = d
	return b
}

// ProbeOptions converts Config to probe.Options.
func (c Config) ProbeOptions() probe.Options {
	return probe.Options{
		MaxFrameBound:   c.MaxFrameBound,
		ExtraIterations: c.ExtraIterations,
	}
}

// TransportOptions converts Config to transport.Options.
func (c Config) TransportOptions() transport.Options {
	return transport.Options{
		SpeedHz:         c.SpeedHz,
		SkipFrames:      c.SkipFrames,
		JumpSize:        c.JumpSize,
		OverlayInterval: c.OverlayInterval,
	}
}

// SchedulerOptions converts Config to scheduler.Options.
func (c Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{
		Transpose:      c.Transpose,
		MaxReadRetries: c.MaxReadRetries,
	}
}
