package adapter_test

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"imagediff/internal/adapter"
	"imagediff/internal/pixel"
	"imagediff/internal/surface"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type rawObject struct {
	width  int
	height int
	data   []byte
}

func (r *rawObject) Dimensions() (int, int) {
	return r.width, r.height
}

func (r *rawObject) Pixels() []byte {
	return r.data
}

func solidPicture(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestClassify(t *testing.T) {
	provider := surface.NewRasterProvider()
	s := provider.CreateSurface(1, 1)

	var nilBuffer *pixel.Buffer
	var nilPicture *image.RGBA

	tests := []struct {
		name string
		in   any
		want adapter.Kind
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			solidPicture(1, 1, color.White),
			adapter.KindPicture,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			s,
			adapter.KindSurface,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			surface.NewContext(s),
			adapter.KindContext,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			surface.NewContext(nil),
			adapter.KindUnknown,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			&rawObject{1, 1, []byte{0, 0, 0, 255}},
			adapter.KindBuffer,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			&rawObject{2, 2, []byte{0, 0, 0, 255}},
			adapter.KindUnknown,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			&rawObject{0, 0, nil},
			adapter.KindUnknown,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			&rawObject{1 << 62, 1, []byte{}},
			adapter.KindUnknown,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			pixel.New(2, 3),
			adapter.KindBuffer,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			*pixel.New(2, 3),
			adapter.KindBuffer,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			nilBuffer,
			adapter.KindUnknown,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			nilPicture,
			adapter.KindUnknown,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			nil,
			adapter.KindUnknown,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"not an image",
			adapter.KindUnknown,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			[]byte{0, 0, 0, 255},
			adapter.KindUnknown,
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := adapter.Classify(in).Kind
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(want != adapter.KindUnknown, adapter.IsImageLike(in)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckType(t *testing.T) {
	t.Run("AllImages", func(t *testing.T) {
		if err := adapter.CheckType(pixel.New(1, 1), solidPicture(1, 1, color.Black)); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("RejectsSecondArgument", func(t *testing.T) {
		err := adapter.CheckType(pixel.New(1, 1), 42)
		if !errors.Is(err, adapter.ErrNotAnImage) {
			t.Fatalf("Expected ErrNotAnImage, got %v", err)
		}

		var notAnImage *adapter.NotAnImageError
		if !errors.As(err, &notAnImage) {
			t.Fatalf("Expected *NotAnImageError, got %T", err)
		}
		if notAnImage.Index != 1 {
			t.Errorf("Expected index 1, got %d", notAnImage.Index)
		}
		if diff := cmp.Diff("submitted object was not an image: argument 1 is int", err.Error()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("RejectsOverflowingDimensions", func(t *testing.T) {
		err := adapter.CheckType(pixel.New(1, 1), &rawObject{1 << 62, 1, []byte{}})
		if !errors.Is(err, adapter.ErrNotAnImage) {
			t.Errorf("Expected ErrNotAnImage, got %v", err)
		}
	})

	t.Run("DescribesNil", func(t *testing.T) {
		err := adapter.CheckType(nil)
		if diff := cmp.Diff("submitted object was not an image: argument 0 is <nil>", err.Error()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
}

func TestAdapter_ToCanonical(t *testing.T) {
	provider := surface.NewRasterProvider()

	t.Run("RawBufferRoundTrip", func(t *testing.T) {
		a := adapter.New(provider)
		raw := &rawObject{1, 1, []byte{0, 0, 0, 255}}

		got, err := a.ToCanonical(raw)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if diff := cmp.Diff(&pixel.Buffer{Width: 1, Height: 1, Data: []byte{0, 0, 0, 255}}, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}

		got.Data[0] = 99
		if raw.data[0] != 0 {
			t.Errorf("Expected caller memory to stay untouched, got %d", raw.data[0])
		}
	})

	t.Run("Picture", func(t *testing.T) {
		a := adapter.New(provider)

		got, err := a.ToCanonical(solidPicture(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255}))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		want := &pixel.Buffer{Width: 2, Height: 1, Data: []byte{10, 20, 30, 255, 10, 20, 30, 255}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("PictureWithOffsetBounds", func(t *testing.T) {
		a := adapter.New(provider)
		picture := image.NewRGBA(image.Rect(3, 4, 4, 5))
		picture.Set(3, 4, color.RGBA{R: 1, G: 2, B: 3, A: 255})

		got, err := a.ToCanonical(picture)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if diff := cmp.Diff([]byte{1, 2, 3, 255}, got.Data); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("ScratchSurfaceIsResizedBetweenPictures", func(t *testing.T) {
		a := adapter.New(provider)

		if _, err := a.ToCanonical(solidPicture(3, 3, color.White)); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		got, err := a.ToCanonical(image.NewRGBA(image.Rect(0, 0, 1, 2)))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if diff := cmp.Diff(pixel.New(1, 2), got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("SurfaceAndContext", func(t *testing.T) {
		a := adapter.New(provider)
		s := provider.CreateSurface(1, 2)
		s.PutPixels(&pixel.Buffer{Width: 1, Height: 2, Data: []byte{1, 1, 1, 1, 2, 2, 2, 2}}, 0, 0)

		want := &pixel.Buffer{Width: 1, Height: 2, Data: []byte{1, 1, 1, 1, 2, 2, 2, 2}}

		got, err := a.ToCanonical(s)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}

		got, err = a.ToCanonical(surface.NewContext(s))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("NotAnImage", func(t *testing.T) {
		a := adapter.New(nil)

		if _, err := a.ToCanonical(struct{}{}); !errors.Is(err, adapter.ErrNotAnImage) {
			t.Errorf("Expected ErrNotAnImage, got %v", err)
		}
	})
}

func TestAdapter_LoadDoesNotCopyBuffers(t *testing.T) {
	a := adapter.New(nil)
	b := pixel.New(1, 1)

	got, err := a.Load(b)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if &got.Data[0] != &b.Data[0] {
		t.Errorf("Expected a view of the caller's buffer")
	}
}
