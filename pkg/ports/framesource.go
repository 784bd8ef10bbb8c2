package ports

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrNotFound is returned by FrameSource.Open when the path does not exist.
	ErrNotFound = errors.New("video file not found")

	// ErrDecodeInit is returned by FrameSource.Open when the decoder cannot
	// open the container.
	ErrDecodeInit = errors.New("decoder cannot open video")

	// ErrReadEnd is returned by VideoHandle.SeekAndRead when no frame could be
	// decoded at the requested position.
	ErrReadEnd = errors.New("no frame at position")
)

// DisplayFrame is a decoded frame. The pixel buffer belongs to whoever holds
// the frame; copy it before handing it to another goroutine.
type DisplayFrame struct {
	Index       int
	TimestampMs float64
	Image       *image.RGBA
}

// Width returns the frame width in pixels.
func (f *DisplayFrame) Width() int {
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (f *DisplayFrame) Height() int {
	return f.Image.Bounds().Dy()
}

// FrameSource opens videos for frame-indexed reading.
type FrameSource interface {
	// Open opens the video at path.
	// It fails with ErrNotFound if the path does not exist and with
	// ErrDecodeInit if the container cannot be decoded.
	Open(ctx context.Context, path string) (VideoHandle, error)
}

// VideoHandle is an open video.
//
// Decoders only expose time-based seeking, so frame numbers are converted to
// milliseconds with FrameToMsec before seeking. A handle is single-reader:
// callers must not seek it from two goroutines at once.
type VideoHandle interface {
	// Path returns the file path the handle was opened from.
	Path() string

	// FrameRate returns frames per second. Constant for the handle's lifetime.
	FrameRate() float64

	// SeekAndRead seeks to frame and decodes exactly one frame.
	// Any decode failure is reported as ErrReadEnd.
	SeekAndRead(ctx context.Context, frame int) (*DisplayFrame, error)

	// Close releases decoder resources.
	Close() error
}

// FrameToMsec converts a frame number to a timestamp in milliseconds.
func FrameToMsec(frame int, frameRate float64) float64 {
	if frameRate <= 0 {
		return 0
	}
	return 1000 * float64(frame) / frameRate
}

// MsecToFrame converts a timestamp in milliseconds to the frame shown at
// that time.
func MsecToFrame(msec, frameRate float64) int {
	return int(msec * frameRate / 1000)
}
