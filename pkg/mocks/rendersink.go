package mocks

import (
	"image"
	"sync"
	"time"

	"github.com/user/framestep/pkg/ports"
)

// Presentation records one call to RenderSink.Present.
type Presentation struct {
	At        time.Time
	Frame     int
	Width     int
	Height    int
	Transpose bool
}

// RenderSink is a mock implementation of ports.RenderSink.
type RenderSink struct {
	mu            sync.Mutex
	presentations []Presentation
	closed        bool

	PresentFunc func(img image.Image, transpose bool) error
}

// NewRenderSink creates a new mock RenderSink.
func NewRenderSink() *RenderSink {
	return &RenderSink{}
}

func (m *RenderSink) Present(img image.Image, transpose bool) error {
	b := img.Bounds()
	m.mu.Lock()
	m.presentations = append(m.presentations, Presentation{
		At:        time.Now(),
		Frame:     FrameIndexOf(img),
		Width:     b.Dx(),
		Height:    b.Dy(),
		Transpose: transpose,
	})
	m.mu.Unlock()

	if m.PresentFunc != nil {
		return m.PresentFunc(img, transpose)
	}
	return nil
}

func (m *RenderSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Presentations returns a copy of all recorded presents.
func (m *RenderSink) Presentations() []Presentation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Presentation, len(m.presentations))
	copy(out, m.presentations)
	return out
}

// Frames returns the frame indices presented, in order.
func (m *RenderSink) Frames() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.presentations))
	for i, p := range m.presentations {
		out[i] = p.Frame
	}
	return out
}

// Closed reports whether Close was called.
func (m *RenderSink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.RenderSink = (*RenderSink)(nil)

// PositionListener is a mock implementation of ports.PositionListener.
type PositionListener struct {
	mu        sync.Mutex
	positions []int
	times     []time.Time
}

func (m *PositionListener) OnPositionUpdate(frame int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = append(m.positions, frame)
	m.times = append(m.times, time.Now())
}

// Positions returns the reported frames in order.
func (m *PositionListener) Positions() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.positions))
	copy(out, m.positions)
	return out
}

// Times returns when each position was reported.
func (m *PositionListener) Times() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, len(m.times))
	copy(out, m.times)
	return out
}

var _ ports.PositionListener = (*PositionListener)(nil)

// TraceOverlay is a mock implementation of ports.TraceOverlay.
type TraceOverlay struct {
	mu    sync.Mutex
	marks []float64
}

func (m *TraceOverlay) MarkTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks = append(m.marks, seconds)
}

// Marks returns the recorded marker times.
func (m *TraceOverlay) Marks() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.marks))
	copy(out, m.marks)
	return out
}

var _ ports.TraceOverlay = (*TraceOverlay)(nil)
