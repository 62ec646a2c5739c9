package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/platinummonkey/sourcedocs/pkg/entity"
	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

var storeTracer = otel.Tracer("sourcedocs/store")

// Ingester converts parser records into entities
type Ingester struct {
	// ProjectRoot, when set, makes source paths relative to it
	ProjectRoot string
	Logger      *observability.Logger
	Metrics     *observability.Metrics
}

// NewIngester creates an ingester rooted at projectRoot
func NewIngester(projectRoot string, logger *observability.Logger, metrics *observability.Metrics) *Ingester {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, os.Stderr)
	}
	return &Ingester{
		ProjectRoot: projectRoot,
		Logger:      logger,
		Metrics:     metrics,
	}
}

type ingestStats struct {
	ingested int
	dropped  int
}

// IngestReader decodes a payload and ingests it. A payload that cannot be
// decoded is logged and yields no entities.
func (i *Ingester) IngestReader(ctx context.Context, name string, r io.Reader) []*entity.Entity {
	_, span := storeTracer.Start(ctx, "store.decode")
	defer span.End()
	span.SetAttributes(attribute.String("input", name))

	p, err := DecodePayload(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode payload")
		i.logger().WithError(err).WithField("input", name).Error("failed to decode parser payload")
		if i.Metrics != nil {
			i.Metrics.IngestFailuresTotal.Inc()
		}
		return nil
	}
	return i.Ingest(ctx, p)
}

// Ingest converts every record of the payload, visiting files in path order
func (i *Ingester) Ingest(ctx context.Context, p Payload) []*entity.Entity {
	_, span := storeTracer.Start(ctx, "store.ingest")
	defer span.End()

	paths := make([]string, 0, len(p))
	for path := range p {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var (
		stats ingestStats
		out   []*entity.Entity
	)
	for _, path := range paths {
		file := i.relativePath(path)
		for _, rec := range p[path] {
			out = append(out, i.convert(rec, "", false, file, &stats)...)
		}
	}

	if i.Metrics != nil {
		i.Metrics.EntitiesIngestedTotal.Add(float64(stats.ingested))
		i.Metrics.EntitiesDroppedTotal.Add(float64(stats.dropped))
	}
	span.SetAttributes(
		attribute.Int("files", len(paths)),
		attribute.Int("entities", stats.ingested),
		attribute.Int("dropped", stats.dropped),
	)
	i.logger().WithFields(map[string]interface{}{
		"files":    len(paths),
		"entities": stats.ingested,
		"dropped":  stats.dropped,
	}).Debug("ingested parser payload")
	return out
}

// convert returns the entities produced by rec. Enum-case markers produce
// their nested records in place of themselves.
func (i *Ingester) convert(rec Record, parentTitle string, nested bool, file string, stats *ingestStats) []*entity.Entity {
	if entity.IsEnumCaseMarker(rec.Kind) {
		var out []*entity.Entity
		for _, sub := range rec.Substructure {
			out = append(out, i.convert(sub, parentTitle, nested, file, stats)...)
		}
		return out
	}

	access, ok := entity.ParseAccessLevel(rec.Accessibility)
	if rec.Name == "" || !ok {
		stats.dropped++
		return nil
	}

	kind := entity.ParseKind(rec.Kind)
	title := rec.Name
	if nested && !kind.IsOther() {
		title = parentTitle + "." + rec.Name
	}

	e := &entity.Entity{
		Title:             title,
		Access:            access,
		Comment:           strings.TrimSpace(rec.DocComment),
		SourceFile:        file,
		Kind:              kind,
		Attributes:        entity.NormalizeAttributes(rec.Attributes),
		DocDeclaration:    rec.DocDeclaration,
		ParsedDeclaration: rec.ParsedDeclaration,
	}
	for _, sub := range rec.Substructure {
		e.Children = append(e.Children, i.convert(sub, title, true, file, stats)...)
	}
	stats.ingested++
	return []*entity.Entity{e}
}

func (i *Ingester) relativePath(path string) string {
	if i.ProjectRoot == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(i.ProjectRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

func (i *Ingester) logger() *observability.Logger {
	if i.Logger == nil {
		return observability.NewLogger(observability.InfoLevel, os.Stderr)
	}
	return i.Logger
}
