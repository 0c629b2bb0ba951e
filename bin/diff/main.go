package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"image"
	"imagediff/internal/codec"
	diffimage "imagediff/internal/diff/image"
	"imagediff/internal/imagediff"
	"imagediff/internal/retry"
	"imagediff/internal/source"
	"imagediff/internal/storage"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

type DiffOutput struct {
	Equal      bool    `json:"equal"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	DiffPath   string  `json:"diffPath"`
	DiffAmount float64 `json:"diffAmount"`
	Regions    int     `json:"regions"`
}

func envOrDefaultValue[T any](key string, defaultValue T) T {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	switch any(defaultValue).(type) {
	case string:
		return any(value).(T)
	case int:
		if intValue, err := strconv.Atoi(value); err == nil {
			return any(intValue).(T)
		}
	case uint:
		if uintValue, err := strconv.ParseUint(value, 10, 0); err == nil {
			return any(uint(uintValue)).(T)
		}
	case float64:
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return any(floatValue).(T)
		}
	case bool:
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return any(boolValue).(T)
		}
	case time.Duration:
		if durationValue, err := time.ParseDuration(value); err == nil {
			return any(durationValue).(T)
		}
	}

	return defaultValue
}

type config struct {
	tolerance       float64
	violationBudget int
	align           string
	format          string
	storageBackend  string
	directory       string
	bucket          string
	retryOn         string
	retryAttempts   uint
	timeout         time.Duration
	failOnDiff      bool
}

func newLogger() (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("GO_LOG"); ok {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, xerrors.Errorf("failed to parse log level: %w", err)
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})), nil
}

func newStorage(ctx context.Context, c config) (storage.Storage, error) {
	switch c.storageBackend {
	case "file":
		return storage.NewFileStorage(ctx, storage.FileConfig{Directory: c.directory})
	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{Bucket: c.bucket})
	default:
		return nil, xerrors.Errorf("unknown storage backend: %s", c.storageBackend)
	}
}

func run(ctx context.Context, c config, baselineRef string, targetRef string) (*DiffOutput, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	align, err := diffimage.ParseAlign(c.align)
	if err != nil {
		return nil, err
	}
	if !codec.Supported(c.format) {
		return nil, xerrors.Errorf("unsupported format: %s", c.format)
	}

	s, err := newStorage(ctx, c)
	if err != nil {
		return nil, xerrors.Errorf("failed to create storage backend: %w", err)
	}

	policy, err := retry.ParsePolicy(c.retryOn)
	if err != nil {
		return nil, err
	}
	client := retry.NewClient(nil, policy, retry.Exponential(100*time.Millisecond, 10*time.Second, c.retryAttempts, nil), c.timeout)

	var bucket storage.Storage
	if c.storageBackend == "s3" {
		bucket = s
	}
	loader := source.NewLoader(client, bucket)

	var baseline, target image.Image
	{
		eg, ctx := errgroup.WithContext(ctx)

		eg.Go(func() error {
			img, err := loader.Load(ctx, baselineRef)
			if err != nil {
				return xerrors.Errorf("failed to load baseline: %w", err)
			}
			baseline = img
			return nil
		})

		eg.Go(func() error {
			img, err := loader.Load(ctx, targetRef)
			if err != nil {
				return xerrors.Errorf("failed to load target: %w", err)
			}
			target = img
			return nil
		})

		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	engine := imagediff.New(imagediff.WithLogger(logger))

	equal, err := engine.Equal(baseline, target, diffimage.EqualOptions{
		Tolerance:       c.tolerance,
		ViolationBudget: c.violationBudget,
	})
	if err != nil {
		return nil, err
	}
	result, err := engine.Calculate(baseline, target, diffimage.DiffOptions{Align: align})
	if err != nil {
		return nil, err
	}

	regions := diffimage.Regions(result.Buffer, diffimage.RegionOptions{
		Tolerance:     c.tolerance,
		MinSize:       2,
		MergeDistance: 10,
	})

	var buffer bytes.Buffer
	if err := codec.Encode(&buffer, result.Buffer.NRGBA(), c.format); err != nil {
		return nil, err
	}

	key := storage.ArtifactKey(baselineRef, targetRef, codec.Extension(c.format), time.Now())
	diffPath, err := s.Put(ctx, key, buffer.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("failed to save diff image: %w", err)
	}

	return &DiffOutput{
		Equal:      equal,
		Width:      result.Buffer.Width,
		Height:     result.Buffer.Height,
		DiffPath:   diffPath,
		DiffAmount: result.DiffAmount,
		Regions:    len(regions),
	}, nil
}

func main() {
	_ = godotenv.Load()

	var c config
	flag.Float64Var(&c.tolerance, "tolerance", envOrDefaultValue("TOLERANCE", 0.0), "Per channel difference allowed before a pixel counts as a violation")
	flag.IntVar(&c.violationBudget, "violation-budget", envOrDefaultValue("VIOLATION_BUDGET", 0), "Number of violations tolerated before images are considered different (0 fails on the first)")
	flag.StringVar(&c.align, "align", envOrDefaultValue("ALIGN", "center"), "Placement of images of different size (center or top)")
	flag.StringVar(&c.format, "format", envOrDefaultValue("FORMAT", "png"), "Diff output format (png, jpeg, bmp or tiff)")
	flag.StringVar(&c.storageBackend, "storage-backend", envOrDefaultValue("STORAGE_BACKEND", "file"), "Where to store the diff (file or s3)")
	flag.StringVar(&c.directory, "directory", envOrDefaultValue("DIRECTORY", "/tmp"), "Output directory for the file backend")
	flag.StringVar(&c.bucket, "bucket", envOrDefaultValue("S3_BUCKET", ""), "Bucket for the s3 backend")
	flag.StringVar(&c.retryOn, "retry-on", envOrDefaultValue("RETRY_ON", "gateway-error,connect-failure,retriable-4xx"), "Conditions under which remote fetches are retried")
	flag.UintVar(&c.retryAttempts, "retry-attempts", envOrDefaultValue("RETRY_ATTEMPTS", uint(3)), "Maximum number of retries for remote fetches")
	flag.DurationVar(&c.timeout, "timeout", envOrDefaultValue("TIMEOUT", 30*time.Second), "Timeout for remote fetches")
	flag.BoolVar(&c.failOnDiff, "fail-on-diff", envOrDefaultValue("FAIL_ON_DIFF", false), "Exit with status 1 when images are not equal")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("baseline, target not specified")
	}

	output, err := run(context.Background(), c, args[0], args[1])
	if err != nil {
		log.Fatalf("Failed to diff images: %v", err)
	}

	if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}

	if c.failOnDiff && !output.Equal {
		os.Exit(1)
	}
}
