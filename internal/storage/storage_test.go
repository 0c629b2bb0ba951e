package storage_test

import (
	"context"
	"fmt"
	"imagediff/internal/storage"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestArtifactKey(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	type in struct {
		baseline string
		target   string
		ext      string
	}

	tests := []struct {
		name string
		in   in
		want string
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{"a.png", "b.png", "png"},
			"Imagediff/diff/40049f1fb9d2beb8/20240102030405.png",
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := storage.ArtifactKey(in.baseline, in.target, in.ext, now)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}

	if storage.ArtifactKey("a", "b", "png", now) == storage.ArtifactKey("b", "b", "png", now) {
		t.Errorf("Expected different inputs to produce different keys")
	}
}

func TestFileStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := storage.NewFileStorage(ctx, storage.FileConfig{Directory: dir})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	url, err := s.Put(ctx, "Imagediff/diff/x/y.png", []byte("data"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if diff := cmp.Diff(filepath.Join(dir, "Imagediff", "diff", "x", "y.png"), url); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	got, err := s.Get(ctx, url)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if diff := cmp.Diff([]byte("data"), got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if _, err := s.Get(ctx, filepath.Join(dir, "missing")); err == nil {
		t.Errorf("Expected an error for a missing artifact")
	}
}
