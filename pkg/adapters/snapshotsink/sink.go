// Package snapshotsink renders frames onto an off-screen canvas and saves
// them as PNG or JPEG files.
package snapshotsink

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/framestep/pkg/ports"
)

// CaptionHeight is the height of the caption bar below the frame.
const CaptionHeight = 20

// JPEGQuality is used for snapshots saved with a .jpg or .jpeg name.
const JPEGQuality = 90

// ErrNothingPresented is returned by Save before the first Present.
var ErrNothingPresented = errors.New("snapshotsink: no frame presented")

// Options configures a Sink.
type Options struct {
	// Dir receives saved snapshots.
	Dir string

	// Background fills the canvas behind the frame.
	Background color.Color

	// CaptionBackground fills the caption bar when there is a caption.
	CaptionBackground color.Color

	// WriteEach saves every presented frame as frame-NNNNNN.png.
	WriteEach bool

	// Caption returns the text drawn under each frame. Nil draws no caption.
	Caption func() string
}

// Sink implements ports.RenderSink on a ports.Canvas.
type Sink struct {
	fs     ports.FileSystem
	images ports.Renderer
	opts   Options
	logger ports.Logger

	mu     sync.Mutex
	canvas ports.Canvas
	width  int
	height int
	last   image.Image
	seq    int
}

// New creates a Sink.
func New(fs ports.FileSystem, images ports.Renderer, opts Options, logger ports.Logger) *Sink {
	if opts.Background == nil {
		opts.Background = color.RGBA{R: 20, G: 20, B: 40, A: 255}
	}
	if opts.CaptionBackground == nil {
		opts.CaptionBackground = color.Black
	}
	return &Sink{
		fs:     fs,
		images: images,
		opts:   opts,
		logger: logger.WithComponent("sink"),
	}
}

// Present draws img at 1:1 with the caption bar below it. The canvas is
// reallocated whenever the frame size changes.
func (s *Sink) Present(img image.Image, transpose bool) error {
	if transpose {
		img = s.images.TransposeImage(img)
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.canvas == nil || w != s.width || h != s.height {
		s.logger.Debug("Surface resized to %dx%d", w, h)
		s.canvas = s.images.CreateCanvas(w, h+CaptionHeight, s.opts.Background)
		s.width, s.height = w, h
	} else {
		s.canvas.Clear(s.opts.Background)
	}

	s.canvas.DrawImage(img, 0, 0)
	if s.opts.Caption != nil {
		if text := s.opts.Caption(); text != "" {
			s.canvas.DrawRect(0, h, w, CaptionHeight, s.opts.CaptionBackground)
			s.canvas.DrawText(text, 4, h+4, ports.TextStyle{FontSize: 12, Color: color.White})
		}
	}
	s.last = s.canvas.ToImage()
	s.seq++

	if s.opts.WriteEach {
		if err := s.saveLocked(fmt.Sprintf("frame-%06d.png", s.seq)); err != nil {
			return fmt.Errorf("%w: %v", ports.ErrPresent, err)
		}
	}
	return nil
}

// Save writes the last presented frame. Names ending in .jpg or .jpeg are
// encoded as JPEG, anything else as PNG. Relative names are placed under Dir.
func (s *Sink) Save(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(name)
}

func (s *Sink) saveLocked(name string) error {
	if s.last == nil {
		return ErrNothingPresented
	}
	path := name
	if !filepath.IsAbs(path) && s.opts.Dir != "" {
		path = filepath.Join(s.opts.Dir, name)
	}

	format, quality := formatFor(name)
	data, err := s.images.EncodeImage(s.last, format, quality)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.fs.WriteFile(path, data); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	s.logger.Debug("Saved %s", path)
	return nil
}

func formatFor(name string) (ports.ImageFormat, int) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return ports.FormatJPEG, JPEGQuality
	}
	return ports.FormatPNG, 0
}

// Last returns the most recently composed image, or nil.
func (s *Sink) Last() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Presented returns the number of frames presented.
func (s *Sink) Presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Close releases the canvas.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas = nil
	return nil
}

var _ ports.RenderSink = (*Sink)(nil)
