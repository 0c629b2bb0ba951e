// Package filter holds per-pixel adjustments that produce canonical buffers,
// used to derive expected images in tests and over HTTP.
package filter

import (
	"imagediff/internal/pixel"
	"math"
)

// Contrast scales each color channel away from (or toward) mid-gray.
// contrast is clamped to [-100, 100]; 0 is a no-op, -100 flattens to gray.
// Alpha is copied unchanged and src is not modified.
func Contrast(src *pixel.Buffer, contrast float64) *pixel.Buffer {
	if src == nil {
		return nil
	}
	if math.IsNaN(contrast) {
		contrast = 0
	}
	contrast = math.Min(math.Max(contrast, -100), 100)
	adjust := math.Pow((contrast+100)/100, 2)

	out := src.Clone()
	for i := 0; i < len(out.Data); i += 4 {
		out.Data[i] = adjustChannel(src.Data[i], adjust)
		out.Data[i+1] = adjustChannel(src.Data[i+1], adjust)
		out.Data[i+2] = adjustChannel(src.Data[i+2], adjust)
	}
	return out
}

func adjustChannel(v uint8, adjust float64) uint8 {
	c := float64(v) / 255
	c -= 0.5
	c *= adjust
	c += 0.5
	c *= 255
	return clampToUint8(c)
}

// clampToUint8 rounds half to even, matching clamped byte array stores.
func clampToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}
