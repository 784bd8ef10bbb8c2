package ports

import (
	"errors"
	"image"
)

// ErrPresent wraps failures to update a display surface.
var ErrPresent = errors.New("present failed")

// RenderSink presents decoded frames on a display surface.
type RenderSink interface {
	// Present shows img. When the image dimensions differ from the current
	// surface the sink reallocates the surface before drawing; it never
	// scales or crops. With transpose set, the two spatial axes are swapped
	// before display.
	//
	// A returned error wraps ErrPresent. Callers log it and keep playing.
	Present(img image.Image, transpose bool) error

	// Close releases the surface.
	Close() error
}
