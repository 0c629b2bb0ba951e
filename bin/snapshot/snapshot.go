package main

import (
	"bytes"
	"context"
	"imagediff/internal/capture"
	"imagediff/internal/codec"
	diffimage "imagediff/internal/diff/image"
	"imagediff/internal/imagediff"
	"imagediff/internal/source"
	"imagediff/internal/storage"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

type SnapshotOutput struct {
	URL          string  `json:"url"`
	Equal        bool    `json:"equal"`
	BaselinePath string  `json:"baselinePath"`
	TargetPath   string  `json:"targetPath"`
	DiffPath     string  `json:"diffPath"`
	DiffAmount   float64 `json:"diffAmount"`
}

// Snapshotter captures a page and compares it against a stored baseline.
type Snapshotter struct {
	Capturer       capture.Capturer
	CaptureOptions capture.Options
	Loader         *source.Loader
	Storage        storage.Storage
	Logger         *slog.Logger

	Baseline      string
	EqualOptions  diffimage.EqualOptions
	DiffOptions   diffimage.DiffOptions
	OutlineRegion bool
}

func (s *Snapshotter) Run(ctx context.Context, url string) (*SnapshotOutput, error) {
	result, err := s.Capturer.Capture(ctx, url, s.CaptureOptions)
	if err != nil {
		return nil, xerrors.Errorf("failed to capture %s: %w", url, err)
	}

	baseline, err := s.Loader.Load(ctx, s.Baseline)
	if err != nil {
		return nil, xerrors.Errorf("failed to load baseline: %w", err)
	}

	engine := imagediff.New(imagediff.WithLogger(s.Logger))
	equal, err := engine.Equal(baseline, result.Picture, s.EqualOptions)
	if err != nil {
		return nil, err
	}
	diff, err := engine.Calculate(baseline, result.Picture, s.DiffOptions)
	if err != nil {
		return nil, err
	}

	artifact := diff.Buffer
	if s.OutlineRegion {
		regions := diffimage.Regions(diff.Buffer, diffimage.DefaultRegionOptions())
		target, err := engine.ToCanonical(result.Picture)
		if err != nil {
			return nil, err
		}
		if target.SameSize(diff.Buffer) {
			artifact = diffimage.Outline(target, regions, red, 3)
		}
	}

	var encoded bytes.Buffer
	if err := codec.Encode(&encoded, artifact.NRGBA(), codec.FormatPNG); err != nil {
		return nil, err
	}

	now := time.Now()
	output := &SnapshotOutput{
		URL:          url,
		Equal:        equal,
		BaselinePath: s.Baseline,
		DiffAmount:   diff.DiffAmount,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		path, err := s.Storage.Put(ctx, storage.ArtifactKey(s.Baseline, url, "target.png", now), result.PNG)
		if err != nil {
			return err
		}
		output.TargetPath = path
		return nil
	})
	eg.Go(func() error {
		path, err := s.Storage.Put(ctx, storage.ArtifactKey(s.Baseline, url, "png", now), encoded.Bytes())
		if err != nil {
			return err
		}
		output.DiffPath = path
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, xerrors.Errorf("failed to upload: %w", err)
	}

	s.Logger.Info("snapshot compared", "url", url, "equal", equal, "diffAmount", diff.DiffAmount)
	return output, nil
}
