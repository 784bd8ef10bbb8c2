// Package summarizer provides summary generation for probed videos.
package summarizer

import "time"

// Summary contains all data collected while probing a video.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Container information
	Video VideoInfo

	// Frame count probe results
	Probe ProbeInfo

	// Playback settings in effect
	Settings Settings
}

// VideoInfo describes the probed file. Container fields are zero when the
// file is not MP4.
type VideoInfo struct {
	Path             string
	Codec            string
	Width            int
	Height           int
	ContainerSamples int
	Fragmented       bool
}

// ProbeInfo contains the frame count search results.
type ProbeInfo struct {
	FrameRate      float64
	LastValidFrame int
	FrameCount     int
	ElapsedMs      int
}

// DurationSec returns the playable duration implied by the frame count.
func (p ProbeInfo) DurationSec() float64 {
	if p.FrameRate <= 0 {
		return 0
	}
	return float64(p.FrameCount) / p.FrameRate
}

// Settings contains the configuration used for the probe.
type Settings struct {
	Backend         string
	SpeedHz         float64
	SkipFrames      bool
	JumpSize        int
	MaxFrameBound   int
	ExtraIterations int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithVideo sets container information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// WithProbe sets the probe results.
func (b *Builder) WithProbe(frameRate float64, lastValidFrame int, elapsed time.Duration) *Builder {
	b.summary.Probe = ProbeInfo{
		FrameRate:      frameRate,
		LastValidFrame: lastValidFrame,
		FrameCount:     lastValidFrame + 1,
		ElapsedMs:      int(elapsed.Milliseconds()),
	}
	return b
}

// WithSettings sets the playback settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
