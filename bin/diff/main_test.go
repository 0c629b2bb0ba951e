package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, width, height int, c color.NRGBA) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	baseline := filepath.Join(dir, "baseline.png")
	target := filepath.Join(dir, "target.png")
	writePNG(t, baseline, 8, 8, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	writePNG(t, target, 8, 8, color.NRGBA{R: 90, G: 10, B: 10, A: 255})

	c := config{
		tolerance:      40,
		align:          "center",
		format:         "png",
		storageBackend: "file",
		directory:      filepath.Join(dir, "out"),
		retryOn:        "gateway-error",
	}

	output, err := run(context.Background(), c, baseline, target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if output.Equal {
		t.Errorf("Expected a red channel difference of 80 to exceed tolerance 40")
	}
	if output.Regions != 1 {
		t.Errorf("Expected one changed region, got %d", output.Regions)
	}
	if _, err := os.Stat(output.DiffPath); err != nil {
		t.Errorf("Expected diff artifact at %s, got %v", output.DiffPath, err)
	}

	c.tolerance = 80
	output, err = run(context.Background(), c, baseline, target)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !output.Equal {
		t.Errorf("Expected images to be equal with tolerance 80")
	}

	c.align = "left"
	if _, err := run(context.Background(), c, baseline, target); err == nil {
		t.Errorf("Expected an error for an unknown alignment")
	}
}
