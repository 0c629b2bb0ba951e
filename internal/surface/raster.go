package surface

import (
	"image"
	"imagediff/internal/pixel"

	xdraw "golang.org/x/image/draw"
)

type rasterProvider struct{}

// NewRasterProvider returns a provider of in-memory surfaces. Reads outside a
// surface yield transparent black and writes outside it are clipped.
func NewRasterProvider() Provider {
	return &rasterProvider{}
}

func (p *rasterProvider) CreateSurface(width int, height int) Surface {
	s := &rasterSurface{}
	s.Resize(width, height)
	return s
}

type rasterSurface struct {
	img *image.NRGBA
}

func (s *rasterSurface) Width() int {
	return s.img.Rect.Dx()
}

func (s *rasterSurface) Height() int {
	return s.img.Rect.Dy()
}

func (s *rasterSurface) Resize(width int, height int) {
	s.img = image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

func (s *rasterSurface) GetPixels(x int, y int, width int, height int) *pixel.Buffer {
	out := pixel.New(width, height)

	area := image.Rect(x, y, x+out.Width, y+out.Height).Intersect(s.img.Rect)
	rowBytes := area.Dx() * 4
	for row := area.Min.Y; row < area.Max.Y; row++ {
		from := s.img.PixOffset(area.Min.X, row)
		to := out.PixOffset(area.Min.X-x, row-y)
		copy(out.Data[to:to+rowBytes], s.img.Pix[from:from+rowBytes])
	}

	return out
}

func (s *rasterSurface) PutPixels(buffer *pixel.Buffer, x int, y int) {
	area := image.Rect(x, y, x+buffer.Width, y+buffer.Height).Intersect(s.img.Rect)
	rowBytes := area.Dx() * 4
	for row := area.Min.Y; row < area.Max.Y; row++ {
		from := buffer.PixOffset(area.Min.X-x, row-y)
		to := s.img.PixOffset(area.Min.X, row)
		copy(s.img.Pix[to:to+rowBytes], buffer.Data[from:from+rowBytes])
	}
}

func (s *rasterSurface) DrawPicture(picture image.Image, x int, y int) {
	xdraw.Copy(s.img, image.Pt(x, y), picture, picture.Bounds(), xdraw.Over, nil)
}

func (s *rasterSurface) Clear(x int, y int, width int, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	area := image.Rect(x, y, x+width, y+height).Intersect(s.img.Rect)
	rowBytes := area.Dx() * 4
	for row := area.Min.Y; row < area.Max.Y; row++ {
		start := s.img.PixOffset(area.Min.X, row)
		clear(s.img.Pix[start : start+rowBytes])
	}
}
