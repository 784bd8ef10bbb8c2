// Package nullsink provides a render sink that discards frames.
package nullsink

import (
	"image"
	"sync/atomic"

	"github.com/user/framestep/pkg/ports"
)

// Sink implements ports.RenderSink by counting and discarding frames. It is
// used for headless benchmarking of decode throughput.
type Sink struct {
	presented atomic.Uint64
}

// New creates a new Sink.
func New() *Sink {
	return &Sink{}
}

// Present discards img.
func (s *Sink) Present(img image.Image, transpose bool) error {
	s.presented.Add(1)
	return nil
}

// Presented returns how many frames were discarded.
func (s *Sink) Presented() uint64 {
	return s.presented.Load()
}

// Close does nothing.
func (s *Sink) Close() error {
	return nil
}

var _ ports.RenderSink = (*Sink)(nil)
