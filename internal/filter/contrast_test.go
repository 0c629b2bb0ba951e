package filter

import (
	"fmt"
	"imagediff/internal/pixel"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makeSolid(w, h int, r, g, b, a uint8) *pixel.Buffer {
	buf := pixel.New(w, h)
	for i := 0; i < len(buf.Data); i += 4 {
		buf.Data[i] = r
		buf.Data[i+1] = g
		buf.Data[i+2] = b
		buf.Data[i+3] = a
	}
	return buf
}

func TestContrast(t *testing.T) {
	type in struct {
		src      *pixel.Buffer
		contrast float64
	}

	tests := []struct {
		name string
		in   in
		want []byte
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{makeSolid(1, 1, 10, 128, 250, 77), 0},
			[]byte{10, 128, 250, 77},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{makeSolid(1, 1, 10, 200, 250, 77), -100},
			// every channel collapses to 127.5, which rounds to even
			[]byte{128, 128, 128, 77},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{makeSolid(1, 1, 64, 191, 0, 255), 100},
			// adjust = 4 pushes both channels out of range
			[]byte{0, 255, 0, 255},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{makeSolid(1, 1, 100, 150, 255, 255), 100000},
			[]byte{17, 218, 255, 255},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{makeSolid(1, 1, 100, 150, 200, 255), 50},
			// adjust = 2.25: 100 -> 65.625, 150 -> 178.125, 200 -> 290.625
			[]byte{66, 178, 255, 255},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := Contrast(in.src, in.contrast)
			if diff := cmp.Diff(want, got.Data); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestContrastDoesNotMutateSource(t *testing.T) {
	src := makeSolid(2, 2, 30, 60, 90, 255)
	before := src.Clone()

	out := Contrast(src, 80)
	if diff := cmp.Diff(before, src); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if out.Width != 2 || out.Height != 2 {
		t.Errorf("Expected 2x2 output, got %dx%d", out.Width, out.Height)
	}
}

func TestContrastNil(t *testing.T) {
	if Contrast(nil, 10) != nil {
		t.Errorf("Expected nil output for nil input")
	}
}
