package adapter

import (
	"image"
	"imagediff/internal/pixel"
	"imagediff/internal/surface"
)

// Adapter extracts pixels through a scratch surface it owns. It is not safe
// for concurrent use; give each goroutine its own Adapter.
type Adapter struct {
	scratch surface.Surface
}

func New(provider surface.Provider) *Adapter {
	if provider == nil {
		provider = surface.NewRasterProvider()
	}
	return &Adapter{
		scratch: provider.CreateSurface(0, 0),
	}
}

// Load classifies and normalizes handle. Raw buffers are returned as
// read-only views of the caller's memory.
func (a *Adapter) Load(handle any) (*pixel.Buffer, error) {
	return a.Normalize(Classify(handle))
}

func (a *Adapter) Normalize(src Source) (*pixel.Buffer, error) {
	switch src.Kind {
	case KindPicture:
		return a.fromPicture(src.picture), nil
	case KindSurface:
		return fromSurface(src.surface), nil
	case KindContext:
		return fromSurface(src.context.Surface()), nil
	case KindBuffer:
		return src.buffer, nil
	default:
		return nil, &NotAnImageError{Value: src.Value}
	}
}

// ToCanonical returns a buffer the caller exclusively owns.
func (a *Adapter) ToCanonical(handle any) (*pixel.Buffer, error) {
	if err := CheckType(handle); err != nil {
		return nil, err
	}

	src := Classify(handle)
	b, err := a.Normalize(src)
	if err != nil {
		return nil, err
	}
	if src.Kind == KindBuffer {
		return b.Clone(), nil
	}
	return b, nil
}

func (a *Adapter) fromPicture(p image.Image) *pixel.Buffer {
	bounds := p.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	a.scratch.Resize(width, height)
	a.scratch.Clear(0, 0, width, height)
	a.scratch.DrawPicture(p, 0, 0)

	return a.scratch.GetPixels(0, 0, width, height)
}

func fromSurface(s surface.Surface) *pixel.Buffer {
	return s.GetPixels(0, 0, s.Width(), s.Height())
}
