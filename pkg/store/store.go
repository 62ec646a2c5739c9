package store

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/platinummonkey/sourcedocs/pkg/entity"
	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

// Store holds the current merged forest. Readers never observe a forest
// before both merge passes have finished.
type Store struct {
	mu     sync.RWMutex
	forest *Forest

	opts    MergeOptions
	logger  *observability.Logger
	metrics *observability.Metrics
}

// New creates an empty store
func New(opts MergeOptions, logger *observability.Logger, metrics *observability.Metrics) *Store {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, os.Stderr)
	}
	return &Store{
		forest:  Merge(nil, opts),
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Load merges entities and replaces the current forest with the result
func (s *Store) Load(ctx context.Context, entities []*entity.Entity) *Forest {
	_, span := storeTracer.Start(ctx, "store.merge")
	defer span.End()

	forest := Merge(entities, s.opts)
	stats := forest.Stats()

	span.SetAttributes(
		attribute.Int("entities", len(entities)),
		attribute.Int("top_level", forest.Len()),
		attribute.Int("internal", stats.Internal),
		attribute.Int("external", stats.External),
	)
	if s.metrics != nil {
		s.metrics.ExtensionsMergedTotal.WithLabelValues("internal").Add(float64(stats.Internal))
		s.metrics.ExtensionsMergedTotal.WithLabelValues("external").Add(float64(stats.External))
	}
	if stats.Ambiguous > 0 {
		s.logger.WithField("extensions", stats.Ambiguous).Debug("extensions matched more than one type")
	}

	s.mu.Lock()
	s.forest = forest
	s.mu.Unlock()
	return forest
}

// Forest returns the current forest
func (s *Store) Forest() *Forest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forest
}
