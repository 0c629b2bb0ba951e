package image

import "imagediff/internal/pixel"

type EqualOptions struct {
	// Tolerance is the largest per-channel difference that is not a violation.
	Tolerance float64
	// ViolationBudget is how many channel samples may exceed Tolerance
	// before the images stop being equal. Zero fails on the first one.
	ViolationBudget int
}

// Comparison explains an equality decision. MaxDelta and Violations only
// cover the samples scanned before the decision was made.
type Comparison struct {
	Equal      bool
	SameSize   bool
	Violations int
	MaxDelta   int
	// Index is the byte offset of the sample that exhausted the budget, or -1.
	Index int
}

func Equal(a *pixel.Buffer, b *pixel.Buffer, opts EqualOptions) bool {
	return Compare(a, b, opts).Equal
}

func Compare(a *pixel.Buffer, b *pixel.Buffer, opts EqualOptions) Comparison {
	c := Comparison{Index: -1}
	if !a.SameSize(b) {
		return c
	}
	c.SameSize = true

	tolerance := max(opts.Tolerance, 0)
	budget := max(opts.ViolationBudget, 0)

	for i := range a.Data {
		d := absDiff(a.Data[i], b.Data[i])
		if d > c.MaxDelta {
			c.MaxDelta = d
		}
		if float64(d) <= tolerance {
			continue
		}
		c.Violations++
		if c.Violations > budget {
			c.Index = i
			return c
		}
	}

	c.Equal = true
	return c
}

func absDiff(a uint8, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
