// Package termsink renders frames as ANSI true-colour half blocks for
// display inside the terminal UI.
//
// Each cell shows two vertical pixels: the foreground colour of "▀" is the
// upper pixel, the background the lower one. Frames are scaled to fit the
// configured width, so this is a preview surface and not a 1:1 one.
package termsink

import (
	"image"
	"strconv"
	"strings"
	"sync"

	"github.com/user/framestep/pkg/ports"
)

// DefaultWidth is the preview width in columns.
const DefaultWidth = 80

// Options configures a Sink.
type Options struct {
	// Width is the preview width in terminal columns.
	Width int

	// OnFrame is called after each frame is rendered. The TUI uses it to
	// schedule a redraw.
	OnFrame func()
}

// Sink keeps the latest frame as a printable string.
type Sink struct {
	images ports.Renderer
	opts   Options

	mu     sync.Mutex
	view   string
	srcW   int
	srcH   int
	frames uint64
}

// New creates a Sink. images performs scaling and transposition.
func New(images ports.Renderer, opts Options) *Sink {
	if opts.Width < 1 {
		opts.Width = DefaultWidth
	}
	return &Sink{images: images, opts: opts}
}

// Present renders img into the preview.
func (s *Sink) Present(img image.Image, transpose bool) error {
	if transpose {
		img = s.images.TransposeImage(img)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}

	cols, rows := fit(b.Dx(), b.Dy(), s.opts.Width)
	scaled := s.images.ResizeImage(img, cols, rows*2)
	view := render(scaled, cols, rows)

	s.mu.Lock()
	s.view = view
	s.srcW, s.srcH = b.Dx(), b.Dy()
	s.frames++
	s.mu.Unlock()

	if s.opts.OnFrame != nil {
		s.opts.OnFrame()
	}
	return nil
}

// View returns the rendered preview, or "" before the first frame.
func (s *Sink) View() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SourceSize returns the size of the last presented frame.
func (s *Sink) SourceSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srcW, s.srcH
}

// Frames returns how many frames were presented.
func (s *Sink) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Close clears the preview.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = ""
	return nil
}

var _ ports.RenderSink = (*Sink)(nil)

// fit returns the cell grid for a w x h image at most maxCols wide. Frames
// narrower than maxCols are not enlarged.
func fit(w, h, maxCols int) (cols, rows int) {
	cols = min(w, maxCols)
	rows = (h*cols/w + 1) / 2
	return cols, max(rows, 1)
}

func render(img image.Image, cols, rows int) string {
	var sb strings.Builder
	sb.Grow(rows * (cols*40 + 8))
	b := img.Bounds()

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			ur, ug, ub, _ := img.At(b.Min.X+col, b.Min.Y+row*2).RGBA()
			lr, lg, lb, _ := img.At(b.Min.X+col, b.Min.Y+row*2+1).RGBA()
			sb.WriteString("\x1b[38;2;")
			writeRGB(&sb, ur, ug, ub)
			sb.WriteString(";48;2;")
			writeRGB(&sb, lr, lg, lb)
			sb.WriteString("m▀")
		}
		sb.WriteString("\x1b[0m")
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func writeRGB(sb *strings.Builder, r, g, b uint32) {
	sb.WriteString(strconv.Itoa(int(r >> 8)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(g >> 8)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(b >> 8)))
}
