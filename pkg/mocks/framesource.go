package mocks

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/user/framestep/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource serving
// synthetic videos registered with AddVideo.
type FrameSource struct {
	mu     sync.Mutex
	videos map[string]*VideoHandle

	OpenFunc func(ctx context.Context, path string) (ports.VideoHandle, error)

	OpenCalls []string
}

// NewFrameSource creates a new mock FrameSource.
func NewFrameSource() *FrameSource {
	return &FrameSource{videos: make(map[string]*VideoHandle)}
}

// AddVideo registers a synthetic video with the given number of decodable
// frames.
func (m *FrameSource) AddVideo(path string, frames int, frameRate float64) *VideoHandle {
	h := NewVideoHandle(path, frames, frameRate)
	m.mu.Lock()
	m.videos[path] = h
	m.mu.Unlock()
	return h
}

func (m *FrameSource) Open(ctx context.Context, path string) (ports.VideoHandle, error) {
	m.mu.Lock()
	m.OpenCalls = append(m.OpenCalls, path)
	h, ok := m.videos[path]
	m.mu.Unlock()

	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, path)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, path)
	}
	return h, nil
}

// OpenCount returns how many times Open was called.
func (m *FrameSource) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.OpenCalls)
}

var _ ports.FrameSource = (*FrameSource)(nil)

// VideoHandle is a synthetic video whose frames [0, Frames) decode
// successfully. Each frame carries its index in the first pixel, see
// FrameIndexOf.
type VideoHandle struct {
	path      string
	frameRate float64
	frames    int
	width     int
	height    int

	SeekAndReadFunc func(ctx context.Context, frame int) (*ports.DisplayFrame, error)

	mu     sync.Mutex
	reads  []int
	closed bool
}

// NewVideoHandle creates a synthetic 8x6 video.
func NewVideoHandle(path string, frames int, frameRate float64) *VideoHandle {
	return &VideoHandle{
		path:      path,
		frameRate: frameRate,
		frames:    frames,
		width:     8,
		height:    6,
	}
}

// SetSize changes the resolution of subsequently decoded frames.
func (m *VideoHandle) SetSize(width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width, m.height = width, height
}

func (m *VideoHandle) Path() string { return m.path }

func (m *VideoHandle) FrameRate() float64 { return m.frameRate }

func (m *VideoHandle) SeekAndRead(ctx context.Context, frame int) (*ports.DisplayFrame, error) {
	m.mu.Lock()
	m.reads = append(m.reads, frame)
	w, h := m.width, m.height
	m.mu.Unlock()

	if m.SeekAndReadFunc != nil {
		return m.SeekAndReadFunc(ctx, frame)
	}
	if frame < 0 || frame >= m.frames {
		return nil, fmt.Errorf("%w: frame %d", ports.ErrReadEnd, frame)
	}
	return SyntheticFrame(frame, m.frameRate, w, h), nil
}

func (m *VideoHandle) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Reads returns the frame numbers passed to SeekAndRead, in call order.
func (m *VideoHandle) Reads() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.reads))
	copy(out, m.reads)
	return out
}

// Closed reports whether Close was called.
func (m *VideoHandle) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.VideoHandle = (*VideoHandle)(nil)

// SyntheticFrame builds a frame whose first pixel encodes index.
func SyntheticFrame(index int, frameRate float64, width, height int) *ports.DisplayFrame {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 40, B: 40, A: 255})
		}
	}
	img.Set(0, 0, color.RGBA{
		R: uint8(index & 0xff),
		G: uint8((index >> 8) & 0xff),
		B: uint8((index >> 16) & 0xff),
		A: 255,
	})
	return &ports.DisplayFrame{
		Index:       index,
		TimestampMs: ports.FrameToMsec(index, frameRate),
		Image:       img,
	}
}

// FrameIndexOf recovers the index written by SyntheticFrame.
func FrameIndexOf(img image.Image) int {
	b := img.Bounds()
	r, g, bl, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	return int(r>>8) | int(g>>8)<<8 | int(bl>>8)<<16
}
