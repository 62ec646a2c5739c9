package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

// FileSystemSink writes pages below a root directory
type FileSystemSink struct {
	rootDir string
	metrics *observability.Metrics
}

// NewFileSystemSink creates the root directory if needed.
func NewFileSystemSink(rootDir string, metrics *observability.Metrics) (*FileSystemSink, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileSystemSink{rootDir: rootDir, metrics: metrics}, nil
}

// Root returns the output directory.
func (s *FileSystemSink) Root() string {
	return s.rootDir
}

// Put writes content to rootDir/path through a temporary file and rename so
// readers never see a partial page.
func (s *FileSystemSink) Put(ctx context.Context, path string, content []byte, contentType string) (err error) {
	_, span := tracer.Start(ctx, "FileSystem.Put",
		trace.WithAttributes(
			attribute.String("sink.path", path),
			attribute.String("content.type", contentType),
			attribute.Int("content.size", len(content)),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		observe(s.metrics, "filesystem", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write page")
		}
	}()

	cleaned, err := CleanPath(path)
	if err != nil {
		return err
	}

	target := filepath.Join(s.rootDir, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".page-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close page: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set page permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move page into place: %w", err)
	}

	span.SetStatus(codes.Ok, "page written")
	return nil
}
