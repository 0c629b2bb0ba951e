package retry

import (
	"math/rand"
	"time"

	"golang.org/x/exp/constraints"
)

type Backoff interface {
	// Next returns how long to wait before attempt+1, or true when no
	// further attempt should be made.
	Next(attempt uint) (time.Duration, bool)
}

type never struct{}

func Never() Backoff {
	return never{}
}

func (never) Next(uint) (time.Duration, bool) {
	return 0, true
}

// Jitter maps a delay ceiling to the actual delay in [0, ceiling).
type Jitter func(int64) int64

type exponential struct {
	base     time.Duration
	ceiling  time.Duration
	attempts uint
	jitter   Jitter
}

// Exponential doubles base per attempt up to ceiling and gives up after
// attempts retries. A nil jitter draws uniformly ("full jitter").
func Exponential(base time.Duration, ceiling time.Duration, attempts uint, jitter Jitter) Backoff {
	return &exponential{
		base:     base,
		ceiling:  ceiling,
		attempts: attempts,
		jitter:   jitter,
	}
}

func (e *exponential) Next(attempt uint) (time.Duration, bool) {
	if attempt >= e.attempts {
		return 0, true
	}

	delay := int64(e.ceiling)
	if attempt < 63 {
		delay = saturatingMul(int64(1)<<attempt, int64(e.base), int64(e.ceiling))
	}
	if delay <= 0 {
		return 0, false
	}

	jitter := e.jitter
	if jitter == nil {
		jitter = rand.Int63n
	}
	return time.Duration(jitter(delay)), false
}

// saturatingMul multiplies non-negative l and r, stopping at ceiling.
func saturatingMul[T constraints.Signed](l T, r T, ceiling T) T {
	if l == 0 || r == 0 {
		return 0
	}
	if l > ceiling/r {
		return ceiling
	}
	return min(l*r, ceiling)
}
