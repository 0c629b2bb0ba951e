package image

import "imagediff/internal/pixel"

type DiffResult struct {
	Buffer *pixel.Buffer
	// DiffAmount is the fraction of pixels showing any difference.
	DiffAmount float64
}

type Differ interface {
	Calculate(baseline *pixel.Buffer, target *pixel.Buffer) *DiffResult
}

var _ Differ = (*AbsoluteDiff)(nil)

type AbsoluteDiff struct {
	options DiffOptions
}

func NewAbsoluteDiff(options DiffOptions) *AbsoluteDiff {
	return &AbsoluteDiff{
		options,
	}
}

func (d *AbsoluteDiff) Calculate(baseline *pixel.Buffer, target *pixel.Buffer) *DiffResult {
	diff := Diff(baseline, target, d.options)

	return &DiffResult{
		Buffer:     diff,
		DiffAmount: Amount(diff),
	}
}

// Amount returns the fraction of pixels in a diff buffer that are not
// opaque black.
func Amount(diff *pixel.Buffer) float64 {
	total := diff.Width * diff.Height
	if total == 0 {
		return 0.0
	}

	changed := 0
	for i := 0; i < len(diff.Data); i += 4 {
		if diff.Data[i] != 0 || diff.Data[i+1] != 0 || diff.Data[i+2] != 0 || diff.Data[i+3] != 255 {
			changed++
		}
	}

	return float64(changed) / float64(total)
}
