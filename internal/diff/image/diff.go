package image

import (
	"fmt"
	"imagediff/internal/pixel"
)

// Align places an image on the canvas when dimensions differ.
type Align string

const (
	AlignCenter Align = "center"
	AlignTop    Align = "top"
)

func ParseAlign(s string) (Align, error) {
	switch Align(s) {
	case "", AlignCenter:
		return AlignCenter, nil
	case AlignTop:
		return AlignTop, nil
	default:
		return "", fmt.Errorf("unknown align %q (top or center)", s)
	}
}

type DiffOptions struct {
	// Align defaults to AlignCenter.
	Align Align
}

// Diff visualizes the difference between a and b. Equal sizes subtract
// channel by channel; unequal sizes are composed onto the larger canvas.
func Diff(a *pixel.Buffer, b *pixel.Buffer, opts DiffOptions) *pixel.Buffer {
	if a.SameSize(b) {
		return subtract(a, b)
	}
	return compose(a, b, opts.Align)
}

// subtract stores |a-b| in RGB and 255-|a-b| in alpha, so matching alpha
// stays opaque.
func subtract(a *pixel.Buffer, b *pixel.Buffer) *pixel.Buffer {
	c := pixel.New(a.Width, a.Height)

	for i := 0; i < len(c.Data); i += 4 {
		c.Data[i] = uint8(absDiff(a.Data[i], b.Data[i]))
		c.Data[i+1] = uint8(absDiff(a.Data[i+1], b.Data[i+1]))
		c.Data[i+2] = uint8(absDiff(a.Data[i+2], b.Data[i+2]))
		c.Data[i+3] = uint8(255 - absDiff(a.Data[i+3], b.Data[i+3]))
	}

	return c
}

// compose writes a's RGB onto an opaque black canvas, then replaces every
// pixel b covers with |canvas-b|. Alpha stays 255 everywhere.
func compose(a *pixel.Buffer, b *pixel.Buffer, align Align) *pixel.Buffer {
	width := max(a.Width, b.Width)
	height := max(a.Height, b.Height)
	c := pixel.New(width, height)

	for i := 3; i < len(c.Data); i += 4 {
		c.Data[i] = 255
	}

	columnOffset, rowOffset := offset(c, a, align)
	for row := 0; row < a.Height; row++ {
		for column := 0; column < a.Width; column++ {
			i := c.PixOffset(column+columnOffset, row+rowOffset)
			j := a.PixOffset(column, row)
			copy(c.Data[i:i+3], a.Data[j:j+3])
		}
	}

	columnOffset, rowOffset = offset(c, b, align)
	for row := 0; row < b.Height; row++ {
		for column := 0; column < b.Width; column++ {
			i := c.PixOffset(column+columnOffset, row+rowOffset)
			j := b.PixOffset(column, row)
			c.Data[i] = uint8(absDiff(c.Data[i], b.Data[j]))
			c.Data[i+1] = uint8(absDiff(c.Data[i+1], b.Data[j+1]))
			c.Data[i+2] = uint8(absDiff(c.Data[i+2], b.Data[j+2]))
		}
	}

	return c
}

// offset returns the column and row at which img is placed on canvas.
func offset(canvas *pixel.Buffer, img *pixel.Buffer, align Align) (int, int) {
	if align == AlignTop {
		return 0, 0
	}
	return (canvas.Width - img.Width) / 2, (canvas.Height - img.Height) / 2
}
