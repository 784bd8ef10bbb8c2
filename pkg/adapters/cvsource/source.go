//go:build gocv

// Package cvsource implements ports.FrameSource with OpenCV through gocv.
//
// Build with -tags gocv; it needs OpenCV 4 and its development headers.
package cvsource

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"

	"github.com/user/framestep/pkg/ports"
)

// Options configures the source.
type Options struct {
	// ReopenPerSeek opens a fresh capture for every read. Some OpenCV
	// backends return stale frames after seeking an already-read capture.
	ReopenPerSeek bool
}

// Source opens videos through gocv.VideoCapture.
type Source struct {
	opts   Options
	logger ports.Logger
}

// New creates a Source.
func New(opts Options, logger ports.Logger) *Source {
	return &Source{opts: opts, logger: logger.WithComponent("source")}
}

// Open opens path and reads its frame rate.
func (s *Source) Open(ctx context.Context, path string) (ports.VideoHandle, error) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, path)
	}

	capture, err := openCapture(path)
	if err != nil {
		return nil, err
	}
	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		capture.Close()
		return nil, fmt.Errorf("%w: %s: unknown frame rate", ports.ErrDecodeInit, path)
	}
	s.logger.Debug("Opened %s: %.0fx%.0f at %.3f fps", path,
		capture.Get(gocv.VideoCaptureFrameWidth), capture.Get(gocv.VideoCaptureFrameHeight), fps)

	h := &Handle{path: path, fps: fps, reopen: s.opts.ReopenPerSeek}
	if s.opts.ReopenPerSeek {
		capture.Close()
	} else {
		h.capture = capture
	}
	return h, nil
}

func openCapture(path string) (*gocv.VideoCapture, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrDecodeInit, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s: video file not opened", ports.ErrDecodeInit, path)
	}
	return capture, nil
}

var _ ports.FrameSource = (*Source)(nil)

// Handle reads frames by seeking the capture to the frame's timestamp.
type Handle struct {
	path   string
	fps    float64
	reopen bool

	mu      sync.Mutex
	capture *gocv.VideoCapture
}

func (h *Handle) Path() string { return h.path }

func (h *Handle) FrameRate() float64 { return h.fps }

// SeekAndRead decodes frame. gocv converts the BGR Mat to RGBA.
func (h *Handle) SeekAndRead(ctx context.Context, frame int) (*ports.DisplayFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame < 0 {
		return nil, fmt.Errorf("%w: frame %d", ports.ErrReadEnd, frame)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	capture := h.capture
	if h.reopen {
		c, err := openCapture(h.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ports.ErrReadEnd, err)
		}
		defer c.Close()
		capture = c
	}
	if capture == nil {
		return nil, fmt.Errorf("%w: %s is closed", ports.ErrReadEnd, h.path)
	}

	ms := ports.FrameToMsec(frame, h.fps)
	capture.Set(gocv.VideoCapturePosMsec, ms)

	mat := gocv.NewMat()
	defer mat.Close()
	if !capture.Read(&mat) || mat.Empty() {
		return nil, fmt.Errorf("%w: frame %d", ports.ErrReadEnd, frame)
	}

	decoded, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: convert frame %d: %v", ports.ErrReadEnd, frame, err)
	}
	img, ok := decoded.(*image.RGBA)
	if !ok {
		img = image.NewRGBA(decoded.Bounds())
		draw.Draw(img, img.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	}
	return &ports.DisplayFrame{Index: frame, TimestampMs: ms, Image: img}, nil
}

// Close releases the capture.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.capture == nil {
		return nil
	}
	err := h.capture.Close()
	h.capture = nil
	return err
}

var _ ports.VideoHandle = (*Handle)(nil)
