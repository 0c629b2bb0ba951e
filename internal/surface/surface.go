// Package surface provides the off-screen drawing surfaces pixels are
// extracted from.
package surface

import (
	"image"
	"imagediff/internal/pixel"
)

type Surface interface {
	Width() int
	Height() int
	// Resize discards the current content.
	Resize(width int, height int)
	// GetPixels returns a newly allocated buffer.
	GetPixels(x int, y int, width int, height int) *pixel.Buffer
	// PutPixels replaces the covered pixels without compositing.
	PutPixels(buffer *pixel.Buffer, x int, y int)
	// DrawPicture composites picture over the surface with its top-left
	// corner at (x, y).
	DrawPicture(picture image.Image, x int, y int)
	Clear(x int, y int, width int, height int)
}

type Provider interface {
	CreateSurface(width int, height int) Surface
}

// Context is a rendering context bound to the surface it draws on.
type Context interface {
	Surface() Surface
}

type renderingContext struct {
	surface Surface
}

func NewContext(s Surface) Context {
	return &renderingContext{
		surface: s,
	}
}

func (c *renderingContext) Surface() Surface {
	return c.surface
}
