package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts the image operations sinks need.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas filled with bg.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image

	// TransposeImage swaps the x and y axes of img.
	TransposeImage(img image.Image) *image.RGBA
}

// Canvas provides drawing operations on an off-screen surface.
type Canvas interface {
	// Width returns the canvas width.
	Width() int

	// Height returns the canvas height.
	Height() int

	// Clear fills the whole canvas with c.
	Clear(c color.Color)

	// DrawImage draws an image at the specified position.
	DrawImage(img image.Image, x, y int)

	// DrawRect draws a filled rectangle.
	DrawRect(x, y, w, h int, c color.Color)

	// DrawText draws text with its top-left corner at the specified position.
	DrawText(text string, x, y int, style TextStyle)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	FontPath string // empty uses the built-in face
	Color    color.Color
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)
