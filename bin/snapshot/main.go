package main

import (
	"context"
	"encoding/json"
	"flag"
	"image/color"
	"imagediff/internal/capture"
	diffimage "imagediff/internal/diff/image"
	"imagediff/internal/retry"
	"imagediff/internal/source"
	"imagediff/internal/storage"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/xerrors"
)

var red = color.NRGBA{R: 255, A: 255}

type headers []string

func (h *headers) String() string {
	return strings.Join(*h, ", ")
}

func (h *headers) Set(value string) error {
	*h = append(*h, value)
	return nil
}

func (h headers) Map() map[string]string {
	if len(h) == 0 {
		return nil
	}
	m := make(map[string]string, len(h))
	for _, header := range h {
		key, value, ok := strings.Cut(header, ":")
		if ok {
			m[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	return m
}

func splitSelectors(s string) []string {
	var selectors []string
	for _, selector := range strings.Split(s, ",") {
		if selector = strings.TrimSpace(selector); selector != "" {
			selectors = append(selectors, selector)
		}
	}
	return selectors
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

// parseSchedule accepts standard five field cron expressions.
func parseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(expr)
	if err != nil {
		return nil, xerrors.Errorf("invalid schedule %q: %w", expr, err)
	}
	return schedule, nil
}

func main() {
	_ = godotenv.Load()

	var baseline string
	var schedule string
	var storageBackend string
	var directory string
	var bucket string
	var tolerance float64
	var violationBudget int
	var align string
	var outline bool
	var maskSelectors string
	var delay time.Duration
	var viewportWidth int
	var viewportHeight int
	var userAgent string
	var chromeDevtoolsProtocolURL string
	var headers headers
	flag.StringVar(&baseline, "baseline", envOrDefaultValue("BASELINE", ""), "Baseline picture (local path, http(s):// or s3:// URL)")
	flag.StringVar(&schedule, "schedule", envOrDefaultValue("SCHEDULE", ""), "Cron expression to repeat the comparison; runs once when empty")
	flag.StringVar(&storageBackend, "storage-backend", envOrDefaultValue("STORAGE_BACKEND", "file"), "Where to store artifacts (file or s3)")
	flag.StringVar(&directory, "directory", envOrDefaultValue("DIRECTORY", "/tmp"), "Output directory for the file backend")
	flag.StringVar(&bucket, "bucket", envOrDefaultValue("S3_BUCKET", ""), "Bucket for the s3 backend")
	flag.Float64Var(&tolerance, "tolerance", envOrDefaultValue("TOLERANCE", 0.0), "Per channel difference allowed before a pixel counts as a violation")
	flag.IntVar(&violationBudget, "violation-budget", envOrDefaultValue("VIOLATION_BUDGET", 0), "Number of violations tolerated before images are considered different")
	flag.StringVar(&align, "align", envOrDefaultValue("ALIGN", "top"), "Placement of pictures of different size (center or top)")
	flag.BoolVar(&outline, "outline", envOrDefaultValue("OUTLINE", false), "Store the capture with changed regions outlined instead of the raw diff")
	flag.StringVar(&maskSelectors, "mask-selectors", envOrDefaultValue("MASK_SELECTORS", ""), "Comma-separated list of CSS selectors to mask during capture")
	flag.DurationVar(&delay, "delay", envOrDefaultValue("DELAY", 3*time.Second), "Delay before capturing")
	flag.IntVar(&viewportWidth, "viewport-width", envOrDefaultValue("VIEWPORT_WIDTH", 1920), "Viewport width in pixels")
	flag.IntVar(&viewportHeight, "viewport-height", envOrDefaultValue("VIEWPORT_HEIGHT", 1080), "Viewport height in pixels")
	flag.StringVar(&userAgent, "user-agent", envOrDefaultValue("USER_AGENT", ""), "User-Agent string to use for requests")
	flag.StringVar(&chromeDevtoolsProtocolURL, "chrome-devtools-protocol-url", envOrDefaultValue("CHROME_DEVTOOLS_PROTOCOL_URL", ""), "Connect to existing browser via Chrome DevTools Protocol URL (e.g., http://localhost:9222)")
	flag.Var(&headers, "H", "Add HTTP header (can be used multiple times)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		log.Fatalf("url not specified")
	}
	if baseline == "" {
		log.Fatalf("baseline not specified")
	}
	url := args[0]

	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	var s storage.Storage
	var err error
	switch storageBackend {
	case "file":
		s, err = storage.NewFileStorage(ctx, storage.FileConfig{Directory: directory})
	case "s3":
		s, err = storage.NewS3Storage(ctx, storage.S3Config{Bucket: bucket})
	default:
		err = xerrors.Errorf("unknown storage backend: %s", storageBackend)
	}
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	alignment, err := diffimage.ParseAlign(align)
	if err != nil {
		log.Fatalf("Invalid align: %v", err)
	}

	config := capture.DefaultPlaywrightConfig()
	config.Delay = delay
	config.ViewportWidth = viewportWidth
	config.ViewportHeight = viewportHeight
	config.UserAgent = userAgent
	config.ChromeDevtoolsProtocolURL = chromeDevtoolsProtocolURL
	if display := os.Getenv("DISPLAY"); display != "" {
		config.Headless = false
	}

	var bucketStorage storage.Storage
	if storageBackend == "s3" {
		bucketStorage = s
	}
	client := retry.NewClient(nil, retry.DefaultPolicy(), retry.Exponential(100*time.Millisecond, 10*time.Second, 3, nil), 30*time.Second)

	snapshotter := &Snapshotter{
		Capturer: capture.NewPlaywrightCapturer(config),
		CaptureOptions: capture.Options{
			Headers:       headers.Map(),
			MaskSelectors: splitSelectors(maskSelectors),
		},
		Loader:  source.NewLoader(client, bucketStorage),
		Storage: s,
		Logger:  logger,

		Baseline: baseline,
		EqualOptions: diffimage.EqualOptions{
			Tolerance:       tolerance,
			ViolationBudget: violationBudget,
		},
		DiffOptions:   diffimage.DiffOptions{Align: alignment},
		OutlineRegion: outline,
	}

	if schedule == "" {
		output, err := snapshotter.Run(ctx, url)
		if err != nil {
			log.Fatalf("Failed to run snapshot: %v", err)
		}
		if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		return
	}

	parsed, err := parseSchedule(schedule)
	if err != nil {
		log.Fatalf("Failed to parse schedule: %v", err)
	}

	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))
	c.Schedule(parsed, cron.FuncJob(func() {
		output, err := snapshotter.Run(ctx, url)
		if err != nil {
			logger.Error("failed to run snapshot", "error", err)
			return
		}
		if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
			logger.Error("failed to encode result", "error", err)
		}
	}))
	c.Start()
	logger.Info("scheduled snapshot", "url", url, "schedule", schedule, "next", parsed.Next(time.Now()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	<-quit

	<-c.Stop().Done()
}
