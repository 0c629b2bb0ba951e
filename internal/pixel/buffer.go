// Package pixel holds the canonical in-memory image representation shared by
// every comparison and diff operation.
package pixel

import (
	"errors"
	"image"
	"image/draw"
	"math"
)

// ErrInvalidLength reports pixel data whose length is not width*height*4.
var ErrInvalidLength = errors.New("pixel data length does not match dimensions")

// Buffer is a row-major RGBA image with one non-premultiplied byte per
// channel. len(Data) is always Width*Height*4.
type Buffer struct {
	Width  int
	Height int
	Data   []byte
}

// fits reports whether width*height*4 is representable as an int.
func fits(width int, height int) bool {
	return width >= 0 && height >= 0 && (width == 0 || height <= math.MaxInt/4/width)
}

// New allocates a zeroed buffer. Negative sizes are treated as 0 and sizes
// whose byte length overflows an int panic with ErrInvalidLength.
func New(width int, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if !fits(width, height) {
		panic(ErrInvalidLength)
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height*4),
	}
}

// FromBytes wraps data without copying it.
func FromBytes(width int, height int, data []byte) (*Buffer, error) {
	if !fits(width, height) || len(data) != width*height*4 {
		return nil, ErrInvalidLength
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Data:   data,
	}, nil
}

// FromImage converts any image into a fresh buffer, replacing (not
// compositing) the destination.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	b := New(bounds.Dx(), bounds.Dy())

	// NRGBA rows are copied as-is to avoid a premultiplied round trip.
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Height; y++ {
			start := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(b.Data[y*b.Width*4:(y+1)*b.Width*4], src.Pix[start:start+b.Width*4])
		}
		return b
	}

	draw.Draw(b.NRGBA(), image.Rect(0, 0, b.Width, b.Height), img, bounds.Min, draw.Src)
	return b
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &Buffer{
		Width:  b.Width,
		Height: b.Height,
		Data:   data,
	}
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (b *Buffer) PixOffset(x int, y int) int {
	return (y*b.Width + x) * 4
}

func (b Buffer) Dimensions() (int, int) {
	return b.Width, b.Height
}

func (b Buffer) Pixels() []byte {
	return b.Data
}

func (b *Buffer) SameSize(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// NRGBA returns an image view backed by the same bytes.
func (b *Buffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Data,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
