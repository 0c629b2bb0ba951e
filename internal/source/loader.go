// Package source resolves picture references given on the command line or
// in requests to decoded pictures.
package source

import (
	"context"
	"fmt"
	"image"
	"imagediff/internal/codec"
	"imagediff/internal/storage"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/xerrors"
)

// Loader understands http(s):// URLs, s3:// URLs and local paths.
type Loader struct {
	client *http.Client
	bucket storage.Storage
}

// NewLoader uses client for remote references and bucket for s3:// ones.
// Either may be nil; a nil client falls back to http.DefaultClient.
func NewLoader(client *http.Client, bucket storage.Storage) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{
		client: client,
		bucket: bucket,
	}
}

func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	data, err := l.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	img, _, err := codec.Decode(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to load %s: %w", ref, err)
	}
	return img, nil
}

// Fetch returns the undecoded bytes behind ref.
func (l *Loader) Fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetchHTTP(ctx, ref)
	case strings.HasPrefix(ref, "s3://"):
		if l.bucket == nil {
			return nil, xerrors.Errorf("no S3 storage configured for %s", ref)
		}
		data, err := l.bucket.Get(ctx, ref)
		if err != nil {
			return nil, xerrors.Errorf("failed to fetch %s: %w", ref, err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, xerrors.Errorf("failed to read %s: %w", ref, err)
		}
		return data, nil
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, ref string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to create request: %w", err)
	}

	response, err := l.client.Do(request)
	if err != nil {
		return nil, xerrors.Errorf("failed to fetch %s: %w", ref, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("failed to fetch %s: %w", ref, &StatusError{StatusCode: response.StatusCode})
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, xerrors.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}
