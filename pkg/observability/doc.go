// Package observability provides structured logging, Prometheus metrics,
// OpenTelemetry tracing, health checks and graceful shutdown.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stderr)
//	logger.WithField("page", path).Info("page published")
//
// Builds carry their ID through the context:
//
//	ctx = observability.WithBuildID(ctx, id)
//	observability.FromContext(ctx).Info("build started")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.PagesRenderedTotal.WithLabelValues("multi-page", "markdown").Add(12)
//
// All metric names carry the sourcedocs_ prefix.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(docsetDB, redisClient)
//	checker.AddCheck("site", func(ctx context.Context) error { ... })
//
// The docset database and custom checks are required; an unreachable Redis
// only degrades readiness.
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:  true,
//		Endpoint: "otel-collector:4317",
//		Insecure: true,
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
package observability
