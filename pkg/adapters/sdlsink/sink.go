//go:build sdl

// Package sdlsink presents frames in an SDL2 window.
//
// SDL calls must run on the main OS thread: the program wraps its main
// function in Main and every call here goes through sdl.Do. Build with
// -tags sdl; it needs the SDL2 development libraries.
package sdlsink

import (
	"fmt"
	"image"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/draw"

	"github.com/user/framestep/pkg/ports"
)

// Main runs fn with SDL's main-thread call queue serviced.
func Main(fn func()) {
	sdl.Main(fn)
}

// Sink is an SDL2 window sized to the current frame.
type Sink struct {
	images ports.Renderer

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	width    int
	height   int
}

// New opens a window titled title. images performs the transpose.
func New(title string, images ports.Renderer) (*Sink, error) {
	s := &Sink{images: images}
	var err error
	sdl.Do(func() {
		if err = sdl.Init(sdl.INIT_VIDEO); err != nil {
			return
		}
		s.window, err = sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
			640, 480, sdl.WINDOW_SHOWN)
		if err != nil {
			return
		}
		s.renderer, err = sdl.CreateRenderer(s.window, -1, sdl.RENDERER_ACCELERATED)
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: open SDL window: %v", ports.ErrPresent, err)
	}
	return s, nil
}

// Present uploads img to a streaming texture and shows it 1:1. The window
// and texture are reallocated when the frame size changes.
func (s *Sink) Present(img image.Image, transpose bool) error {
	var rgba *image.RGBA
	if transpose {
		rgba = s.images.TransposeImage(img)
	} else if r, ok := img.(*image.RGBA); ok && r.Rect.Min == (image.Point{}) {
		rgba = r
	} else {
		rgba = image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	var err error
	sdl.Do(func() {
		err = s.present(rgba)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrPresent, err)
	}
	return nil
}

func (s *Sink) present(img *image.RGBA) error {
	// Keep the window responsive; input is handled by the terminal UI.
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	if s.texture == nil || w != s.width || h != s.height {
		if s.texture != nil {
			s.texture.Destroy()
			s.texture = nil
		}
		tex, err := s.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGBA32), sdl.TEXTUREACCESS_STREAMING, int32(w), int32(h))
		if err != nil {
			return fmt.Errorf("create texture: %w", err)
		}
		s.texture = tex
		s.width, s.height = w, h
		s.window.SetSize(int32(w), int32(h))
	}

	pixels, pitch, err := s.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("lock texture: %w", err)
	}
	for y := 0; y < h; y++ {
		copy(pixels[y*pitch:y*pitch+w*4], img.Pix[y*img.Stride:y*img.Stride+w*4])
	}
	s.texture.Unlock()

	if err := s.renderer.Clear(); err != nil {
		return err
	}
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return err
	}
	s.renderer.Present()
	return nil
}

// Close destroys the window and shuts SDL down.
func (s *Sink) Close() error {
	sdl.Do(func() {
		if s.texture != nil {
			s.texture.Destroy()
			s.texture = nil
		}
		if s.renderer != nil {
			s.renderer.Destroy()
			s.renderer = nil
		}
		if s.window != nil {
			s.window.Destroy()
			s.window = nil
		}
		sdl.Quit()
	})
	return nil
}

var _ ports.RenderSink = (*Sink)(nil)
