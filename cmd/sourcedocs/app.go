package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/platinummonkey/sourcedocs/pkg/cache"
	"github.com/platinummonkey/sourcedocs/pkg/config"
	"github.com/platinummonkey/sourcedocs/pkg/docs"
	"github.com/platinummonkey/sourcedocs/pkg/docset"
	"github.com/platinummonkey/sourcedocs/pkg/observability"
	"github.com/platinummonkey/sourcedocs/pkg/pipeline"
	"github.com/platinummonkey/sourcedocs/pkg/storage"
)

// app holds the components shared by generate and serve
type app struct {
	cfg      *config.Config
	logger   *observability.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	builder  *pipeline.Builder
	index    *docset.Index
	redis    *cache.Redis
	shutdown *observability.ShutdownManager
}

// newApp wires the pipeline from cfg. Resources it opens are registered
// with the returned shutdown manager.
func newApp(ctx context.Context, cfg *config.Config, logOutput io.Writer) (*app, error) {
	logger := observability.NewLogger(cfg.Observability.LogLevel, logOutput)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  observability.NewMetrics(registry),
		shutdown: observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout),
	}

	sink, err := storage.New(ctx, cfg.StorageConfig(), a.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s sink: %w", cfg.Output.Sink, err)
	}

	var index pipeline.IndexWriter
	if cfg.Output.Docset != "" {
		a.index, err = docset.Open(cfg.Output.Docset)
		if err != nil {
			return nil, err
		}
		a.shutdown.Register("docset", func(context.Context) error { return a.index.Close() })
		index = a.index
	}

	root := cfg.Project.Root
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}

	builder := pipeline.NewBuilder(pipeline.Options{
		PayloadPath: cfg.Project.Payload,
		ProjectRoot: root,
		Merge:       cfg.MergeOptions(),
		Docs:        cfg.DocsOptions(),
	}, sink, index, a.pageCache(ctx), logger, a.metrics)
	a.builder = builder

	return a, nil
}

// pageCache returns the configured page cache or nil. An unreachable Redis
// falls back to the in-memory tier alone.
func (a *app) pageCache(ctx context.Context) docs.PageCache {
	if !a.cfg.Cache.Enabled {
		return nil
	}

	memory := cache.NewMemory(a.cfg.Cache.Size, a.cfg.Cache.TTL, a.metrics)
	if a.cfg.Cache.RedisURL == "" {
		return memory
	}

	remote, err := cache.NewRedis(a.cfg.RedisConfig(), a.metrics)
	if err != nil {
		a.logger.WithError(err).Warn("redis unavailable, using the in-memory page cache only")
		return memory
	}
	a.redis = remote
	a.shutdown.Register("redis", func(context.Context) error { return remote.Close() })
	return cache.NewTiered(memory, remote)
}

// healthChecker probes the docset database and Redis when configured
func (a *app) healthChecker() *observability.HealthChecker {
	var db *sql.DB
	if a.index != nil {
		db = a.index.DB()
	}
	var client *redis.Client
	if a.redis != nil {
		client = a.redis.Client()
	}

	h := observability.NewHealthChecker(db, client)
	h.SetVersion(Version)
	return h
}
