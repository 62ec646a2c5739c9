package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

var tracer = otel.Tracer("sourcedocs/storage")

// ErrInvalidPath is returned for page paths that are absolute or escape the
// output root.
var ErrInvalidPath = errors.New("invalid page path")

// Sink receives rendered pages.
type Sink interface {
	Put(ctx context.Context, path string, content []byte, contentType string) error
}

// Config selects and configures a sink backend.
type Config struct {
	Type string // "filesystem" or "s3"

	// Filesystem config
	FilesystemRoot string

	// S3 config
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3Prefix       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:           "filesystem",
		FilesystemRoot: "docs",
		S3Region:       "us-east-1",
	}
}

// New builds the sink named by cfg.Type.
func New(ctx context.Context, cfg Config, metrics *observability.Metrics) (Sink, error) {
	switch cfg.Type {
	case "", "filesystem":
		return NewFileSystemSink(cfg.FilesystemRoot, metrics)
	case "s3":
		return NewS3Sink(ctx, cfg, metrics)
	default:
		return nil, fmt.Errorf("unknown sink type %q", cfg.Type)
	}
}

// CleanPath normalises a page path to slash form and rejects anything that
// would land outside the output root.
func CleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}

	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}

func observe(metrics *observability.Metrics, backend string, start time.Time, err error) {
	if metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SinkOperationsTotal.WithLabelValues(backend, status).Inc()
	metrics.SinkOperationDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
