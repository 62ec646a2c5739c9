package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/sourcedocs/pkg/docs"
	"github.com/platinummonkey/sourcedocs/pkg/observability"
	"github.com/platinummonkey/sourcedocs/pkg/storage"
	"github.com/platinummonkey/sourcedocs/pkg/store"
)

var tracer = otel.Tracer("sourcedocs/pipeline")

// ErrNoPayload is returned when no payload path is configured.
var ErrNoPayload = errors.New("no payload path configured")

// IndexWriter receives the packaging entries of each build.
type IndexWriter interface {
	Write(ctx context.Context, entries []docs.Entry) error
}

// Options configures a Builder.
type Options struct {
	// PayloadPath is the parser output to load on every build.
	PayloadPath string
	// ProjectRoot makes entity file paths relative.
	ProjectRoot string
	Merge       store.MergeOptions
	Docs        docs.Options
}

// Result summarises one build.
type Result struct {
	ID        string
	Entities  int
	Pages     int
	Bytes     int
	Stats     store.MergeStats
	StartedAt time.Time
	Duration  time.Duration
}

// String formats the result for log lines and CLI output.
func (r *Result) String() string {
	return fmt.Sprintf("build %s: %d entities, %d pages, %s in %s",
		r.ID, r.Entities, r.Pages, humanize.Bytes(uint64(r.Bytes)), r.Duration.Round(time.Millisecond))
}

// Builder runs load -> ingest -> merge -> render -> publish. Builds are
// serialised; the last successful Site stays readable while a new one runs.
type Builder struct {
	opts      Options
	ingester  *store.Ingester
	store     *store.Store
	generator *docs.Generator
	sink      storage.Sink
	index     IndexWriter
	logger    *observability.Logger
	metrics   *observability.Metrics

	mu   sync.Mutex
	site atomic.Pointer[docs.Site]
	last atomic.Pointer[Result]
}

// NewBuilder wires the pipeline stages. sink, index and pageCache may be nil.
func NewBuilder(opts Options, sink storage.Sink, index IndexWriter, pageCache docs.PageCache, logger *observability.Logger, metrics *observability.Metrics) *Builder {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, os.Stderr)
	}

	return &Builder{
		opts:      opts,
		ingester:  store.NewIngester(opts.ProjectRoot, logger, metrics),
		store:     store.New(opts.Merge, logger, metrics),
		generator: docs.NewGenerator(opts.Docs, pageCache, logger, metrics),
		sink:      sink,
		index:     index,
		logger:    logger,
		metrics:   metrics,
	}
}

// Site returns the most recent successfully built site, or nil.
func (b *Builder) Site() *docs.Site {
	return b.site.Load()
}

// LastResult returns the summary of the most recent successful build.
func (b *Builder) LastResult() *Result {
	return b.last.Load()
}

// Store exposes the entity store for search.
func (b *Builder) Store() *store.Store {
	return b.store
}

// Options returns the builder configuration.
func (b *Builder) Options() Options {
	return b.opts
}

// Build runs the full pipeline once.
func (b *Builder) Build(ctx context.Context) (_ *Result, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := &Result{ID: uuid.NewString(), StartedAt: time.Now()}
	ctx = observability.WithLogger(ctx, b.logger)
	ctx = observability.WithBuildID(ctx, res.ID)
	logger := observability.FromContext(ctx)

	ctx, span := tracer.Start(ctx, "Pipeline.Build",
		trace.WithAttributes(
			attribute.String("build.id", res.ID),
			attribute.String("build.payload", b.opts.PayloadPath),
			attribute.String("build.layout", b.opts.Docs.Layout.String()),
		),
	)
	defer span.End()
	logger = observability.UpdateLoggerWithTraceContext(ctx, logger)

	defer func() {
		res.Duration = time.Since(res.StartedAt)
		status := "success"
		if err != nil {
			status = "failure"
			span.RecordError(err)
			span.SetStatus(codes.Error, "build failed")
			logger.WithError(err).Error("build failed")
		} else {
			span.SetStatus(codes.Ok, "build succeeded")
			logger.WithFields(map[string]interface{}{
				"entities": res.Entities,
				"pages":    res.Pages,
				"size":     humanize.Bytes(uint64(res.Bytes)),
				"duration": res.Duration.String(),
			}).Info("build finished")
		}
		if b.metrics != nil {
			b.metrics.BuildsTotal.WithLabelValues(status).Inc()
			b.metrics.BuildDuration.Observe(res.Duration.Seconds())
		}
	}()

	if b.opts.PayloadPath == "" {
		return nil, ErrNoPayload
	}

	f, err := os.Open(b.opts.PayloadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload: %w", err)
	}
	entities := b.ingester.IngestReader(ctx, b.opts.PayloadPath, f)
	f.Close()

	forest := b.store.Load(ctx, entities)
	res.Stats = forest.Stats()

	site, err := b.generator.Generate(ctx, forest)
	if err != nil {
		return nil, fmt.Errorf("failed to generate site: %w", err)
	}

	if err := b.publish(ctx, site); err != nil {
		return nil, err
	}

	if b.index != nil {
		if err := b.index.Write(ctx, site.Entries); err != nil {
			return nil, fmt.Errorf("failed to write docset index: %w", err)
		}
	}

	res.Entities = len(forest.VisibleIndex(b.opts.Docs.MinAccess))
	res.Pages = len(site.All())
	res.Bytes = site.Size()

	b.site.Store(site)
	b.last.Store(res)
	if b.metrics != nil {
		b.metrics.EntitiesTotal.Set(float64(res.Entities))
		b.metrics.PagesTotal.Set(float64(res.Pages))
	}

	return res, nil
}

func (b *Builder) publish(ctx context.Context, site *docs.Site) error {
	if b.sink == nil {
		return nil
	}
	for _, page := range site.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.sink.Put(ctx, page.Path, page.Content, page.ContentType); err != nil {
			return fmt.Errorf("failed to publish %s: %w", page.Path, err)
		}
	}
	return nil
}
