package image

import (
	"image"
	"image/color"
	"imagediff/internal/pixel"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// blankDiff is what Diff returns for identical inputs.
func blankDiff(width, height int) *pixel.Buffer {
	return createTestBuffer(width, height, 0, 0, 0, 255)
}

func paint(buf *pixel.Buffer, r image.Rectangle, value uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			buf.Data[buf.PixOffset(x, y)] = value
		}
	}
}

func TestRegions(t *testing.T) {
	t.Run("NoChanges", func(t *testing.T) {
		if got := Regions(blankDiff(20, 20), DefaultRegionOptions()); len(got) != 0 {
			t.Errorf("Expected no regions, got %v", got)
		}
	})

	t.Run("SingleBlock", func(t *testing.T) {
		buf := blankDiff(40, 40)
		paint(buf, image.Rect(5, 6, 10, 12), 200)

		want := []image.Rectangle{image.Rect(5, 6, 10, 12)}
		if diff := cmp.Diff(want, Regions(buf, DefaultRegionOptions())); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("NearbyBlocksMerge", func(t *testing.T) {
		buf := blankDiff(60, 60)
		paint(buf, image.Rect(0, 0, 5, 5), 200)
		paint(buf, image.Rect(10, 0, 15, 5), 200)
		paint(buf, image.Rect(50, 50, 60, 60), 200)

		want := []image.Rectangle{image.Rect(0, 0, 15, 5), image.Rect(50, 50, 60, 60)}
		if diff := cmp.Diff(want, Regions(buf, DefaultRegionOptions())); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("MergeReachesEarlierRegion", func(t *testing.T) {
		buf := blankDiff(40, 30)
		paint(buf, image.Rect(0, 0, 3, 3), 200)
		paint(buf, image.Rect(25, 5, 28, 8), 200)
		paint(buf, image.Rect(12, 14, 18, 20), 200)

		want := []image.Rectangle{image.Rect(0, 0, 28, 20)}
		if diff := cmp.Diff(want, Regions(buf, DefaultRegionOptions())); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("SpecksAndToleranceIgnored", func(t *testing.T) {
		buf := blankDiff(40, 40)
		paint(buf, image.Rect(1, 1, 2, 2), 255)
		paint(buf, image.Rect(20, 20, 30, 30), 30)

		if got := Regions(buf, RegionOptions{Tolerance: 30, MinSize: 2}); len(got) != 0 {
			t.Errorf("Expected no regions, got %v", got)
		}
	})

	t.Run("AlphaChange", func(t *testing.T) {
		buf := blankDiff(10, 10)
		for y := 2; y < 6; y++ {
			for x := 2; x < 6; x++ {
				buf.Data[buf.PixOffset(x, y)+3] = 0
			}
		}

		want := []image.Rectangle{image.Rect(2, 2, 6, 6)}
		if diff := cmp.Diff(want, Regions(buf, DefaultRegionOptions())); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
}

func TestOutline(t *testing.T) {
	picture := createTestBuffer(6, 6, 0, 0, 0, 255)
	red := color.NRGBA{R: 255, A: 255}

	out := Outline(picture, []image.Rectangle{image.Rect(2, 2, 4, 4)}, red, 1)

	if got := out.NRGBA().NRGBAAt(1, 1); got != red {
		t.Errorf("Expected border pixel to be red, got %v", got)
	}
	if got := out.NRGBA().NRGBAAt(2, 2); got == red {
		t.Errorf("Expected region interior to be untouched")
	}
	if got := picture.NRGBA().NRGBAAt(1, 1); got == red {
		t.Errorf("Expected source to be untouched")
	}
}
