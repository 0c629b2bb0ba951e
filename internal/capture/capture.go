// Package capture renders web pages into pictures that can be compared
// against a baseline.
package capture

import (
	"context"
	"image"
)

type Options struct {
	Headers       map[string]string
	MaskSelectors []string
}

type Result struct {
	// PNG is the lossless screenshot as returned by the browser.
	PNG     []byte
	Picture image.Image
}

type Capturer interface {
	Capture(ctx context.Context, url string, options Options) (*Result, error)
}
