// Package multisink fans frames out to several render sinks.
package multisink

import (
	"errors"
	"fmt"
	"image"

	"github.com/user/framestep/pkg/ports"
)

// Sink presents every frame to each of its sinks in order.
type Sink struct {
	sinks []ports.RenderSink
}

// New creates a Sink over sinks. Nil entries are skipped.
func New(sinks ...ports.RenderSink) *Sink {
	s := &Sink{}
	for _, sink := range sinks {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
	return s
}

// Len returns the number of sinks.
func (s *Sink) Len() int {
	return len(s.sinks)
}

// Present shows img on every sink. A failing sink does not stop the
// others; the failures are joined.
func (s *Sink) Present(img image.Image, transpose bool) error {
	var errs []error
	for i, sink := range s.sinks {
		if err := sink.Present(img, transpose); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ports.ErrPresent, errors.Join(errs...))
}

// Close closes every sink.
func (s *Sink) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ ports.RenderSink = (*Sink)(nil)
