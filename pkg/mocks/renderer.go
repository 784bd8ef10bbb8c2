package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/framestep/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc   func(width, height int, bg color.Color) ports.Canvas
	EncodeImageFunc    func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc    func(img image.Image, width, height int) image.Image
	TransposeImageFunc func(img image.Image) *image.RGBA

	mu       sync.Mutex
	Canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := &Canvas{width: width, height: height}
	m.mu.Lock()
	m.Canvases = append(m.Canvases, c)
	m.mu.Unlock()
	return c
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) TransposeImage(img image.Image) *image.RGBA {
	if m.TransposeImageFunc != nil {
		return m.TransposeImageFunc(img)
	}
	b := img.Bounds()
	return image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
}

// CanvasCount returns how many canvases were created.
func (m *Renderer) CanvasCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Canvases)
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas that records text and
// rectangle draws.
type Canvas struct {
	width  int
	height int
	img    *image.RGBA

	Texts []string
	Rects []image.Rectangle
}

func (m *Canvas) Width() int  { return m.width }
func (m *Canvas) Height() int { return m.height }

func (m *Canvas) Clear(c color.Color) {}

func (m *Canvas) DrawImage(img image.Image, x, y int) {}

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color) {
	m.Rects = append(m.Rects, image.Rect(x, y, x+w, y+h))
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.Texts = append(m.Texts, text)
}

func (m *Canvas) ToImage() image.Image {
	if m.img != nil {
		return m.img
	}
	return image.NewRGBA(image.Rect(0, 0, m.width, m.height))
}

var _ ports.Canvas = (*Canvas)(nil)
