// Package imagediff is the entry point for comparing and diffing image-like
// values. Every call validates its arguments before touching pixels.
package imagediff

import (
	"imagediff/internal/adapter"
	diffimage "imagediff/internal/diff/image"
	"imagediff/internal/pixel"
	"imagediff/internal/surface"
	"log/slog"
)

// Engine owns a surface adapter and is therefore not safe for concurrent
// use. Create one Engine per goroutine.
type Engine struct {
	adapter *adapter.Adapter
	logger  *slog.Logger
}

type Option func(*options)

type options struct {
	provider surface.Provider
	logger   *slog.Logger
}

func WithProvider(p surface.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func New(opts ...Option) *Engine {
	o := &options{
		provider: surface.NewRasterProvider(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Engine{
		adapter: adapter.New(o.provider),
		logger:  o.logger,
	}
}

func (e *Engine) IsImageLike(handle any) bool {
	return adapter.IsImageLike(handle)
}

// ToCanonical returns a copy the caller owns.
func (e *Engine) ToCanonical(handle any) (*pixel.Buffer, error) {
	return e.adapter.ToCanonical(handle)
}

func (e *Engine) Equal(a any, b any, opts diffimage.EqualOptions) (bool, error) {
	ab, bb, err := e.load(a, b)
	if err != nil {
		return false, err
	}

	c := diffimage.Compare(ab, bb, opts)
	if !c.Equal {
		if !c.SameSize {
			e.logger.Debug("images differ in size",
				"a", [2]int{ab.Width, ab.Height},
				"b", [2]int{bb.Width, bb.Height},
			)
		} else {
			e.logger.Debug("images differ",
				"index", c.Index,
				"violations", c.Violations,
				"maxDelta", c.MaxDelta,
				"tolerance", opts.Tolerance,
			)
		}
	}
	return c.Equal, nil
}

func (e *Engine) Diff(a any, b any, opts diffimage.DiffOptions) (*pixel.Buffer, error) {
	ab, bb, err := e.load(a, b)
	if err != nil {
		return nil, err
	}
	return diffimage.Diff(ab, bb, opts), nil
}

func (e *Engine) Calculate(a any, b any, opts diffimage.DiffOptions) (*diffimage.DiffResult, error) {
	ab, bb, err := e.load(a, b)
	if err != nil {
		return nil, err
	}
	return diffimage.NewAbsoluteDiff(opts).Calculate(ab, bb), nil
}

// load validates both handles before normalizing either. Reusing the scratch
// surface for b is fine since GetPixels always allocates.
func (e *Engine) load(a any, b any) (*pixel.Buffer, *pixel.Buffer, error) {
	if err := adapter.CheckType(a, b); err != nil {
		return nil, nil, err
	}

	ab, err := e.adapter.Load(a)
	if err != nil {
		return nil, nil, err
	}
	bb, err := e.adapter.Load(b)
	if err != nil {
		return nil, nil, err
	}
	return ab, bb, nil
}
