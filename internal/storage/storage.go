package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"
)

type Storage interface {
	// Put stores data under key and returns a URL that Get accepts.
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, url string) ([]byte, error)
}

// ArtifactKey names a diff artifact after the pair of inputs it compares, so
// repeated runs for the same pair land next to each other.
func ArtifactKey(baseline string, target string, ext string, now time.Time) string {
	h := sha256.New()
	h.Write([]byte(baseline + target))
	hash := fmt.Sprintf("%x", h.Sum(nil))[:16]

	return fmt.Sprintf("Imagediff/diff/%s/%s.%s", hash, now.Format("20060102150405"), ext)
}
