package scheduler

import (
	"errors"
	"fmt"
	"math"

	"github.com/user/framestep/pkg/ports"
)

// ErrInvalidCommand is returned by Submit for a Start that violates its
// invariants.
var ErrInvalidCommand = errors.New("invalid playback command")

// Command is a playback command: Start or Stop.
type Command interface {
	isCommand()
}

// Start begins a playback session, replacing any running one.
type Start struct {
	// Handle is the video to read frames from.
	Handle ports.VideoHandle

	// FrameCursor is the first frame rendered. Must be in [0, FrameCount).
	FrameCursor int

	// SpeedHz is the requested frame rate. Must be positive.
	SpeedHz float64

	// Reverse plays towards frame 0.
	Reverse bool

	// SkipFrames lets the cursor jump ahead to keep up with wall-clock time
	// when rendering is slower than SpeedHz.
	SkipFrames bool

	// FrameCount bounds the session; playback ends at the boundary.
	FrameCount int
}

// Stop ends the running session.
type Stop struct{}

func (Start) isCommand() {}
func (Stop) isCommand()  {}

// Validate checks the Start invariants.
func (c Start) Validate() error {
	switch {
	case c.Handle == nil:
		return fmt.Errorf("%w: no video handle", ErrInvalidCommand)
	case !(c.SpeedHz > 0) || math.IsInf(c.SpeedHz, 1):
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidCommand, c.SpeedHz)
	case c.FrameCount <= 0:
		return fmt.Errorf("%w: frame count must be positive, got %d", ErrInvalidCommand, c.FrameCount)
	case c.FrameCursor < 0 || c.FrameCursor >= c.FrameCount:
		return fmt.Errorf("%w: frame cursor %d outside [0, %d)", ErrInvalidCommand, c.FrameCursor, c.FrameCount)
	}
	return nil
}

// step returns the per-tick cursor increment.
func (c Start) step() int {
	if c.Reverse {
		return -1
	}
	return 1
}

// showRequest asks the idle scheduler to render one frame without starting a
// session.
type showRequest struct {
	handle ports.VideoHandle
	frame  int
}
