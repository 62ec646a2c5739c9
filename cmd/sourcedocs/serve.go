package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/sourcedocs/pkg/api"
	"github.com/platinummonkey/sourcedocs/pkg/observability"
	"github.com/platinummonkey/sourcedocs/pkg/pipeline"
)

type serveOptions struct {
	port     string
	watch    bool
	schedule string
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build the documentation and serve it over HTTP",
		Long: `Build the documentation, then serve the index, pages, search and docset
entries over HTTP. With --watch the site is rebuilt whenever the payload
changes; with --schedule it is rebuilt on a cron schedule. A failed rebuild
keeps the previous site online.

Example:

  sourcedocs serve --payload build/docs.json --watch --port 8080`,
		Args: cobra.NoArgs,
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.port, "port", "", "port to listen on")
	flags.BoolVar(&opts.watch, "watch", false, "rebuild when the payload file changes")
	flags.StringVar(&opts.schedule, "schedule", "", `cron schedule for rebuilds, e.g. "@hourly"`)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := global.load()
		if err != nil {
			return err
		}
		if opts.port != "" {
			cfg.Server.Port = opts.port
		}
		if opts.watch {
			cfg.Watch.Enabled = true
		}
		if opts.schedule != "" {
			cfg.Watch.Schedule = opts.schedule
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return a.serve(ctx)
	}
	return cmd
}

// serve runs the server until ctx is canceled or the listener fails
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	providers, err := observability.InitOTel(ctx, cfg.OTelConfig(), logger)
	if err != nil {
		a.shutdown.Shutdown()
		return err
	}
	a.shutdown.Register("otel", func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})

	if res, err := a.builder.Build(ctx); err != nil {
		logger.WithError(err).Warn("initial build failed, serving 503 until a rebuild succeeds")
	} else {
		logger.Info(res.String())
	}

	if cfg.Watch.Enabled {
		watcher := pipeline.NewWatcher(a.builder, cfg.Watch.Debounce)
		go func() {
			defer observability.RecoverPanic(logger, "payload watcher")
			if err := watcher.Run(ctx); err != nil {
				logger.WithError(err).Error("payload watcher stopped")
			}
		}()
	}

	if cfg.Watch.Schedule != "" {
		scheduler, err := pipeline.NewScheduler(ctx, a.builder, cfg.Watch.Schedule)
		if err != nil {
			a.shutdown.Shutdown()
			return err
		}
		scheduler.Start()
		a.shutdown.Register("scheduler", func(context.Context) error {
			scheduler.Stop()
			return nil
		})
	}

	metrics := a.metrics
	registry := a.registry
	if !cfg.Observability.MetricsEnabled {
		metrics, registry = nil, nil
	}
	server := api.NewServer(a.builder, a.healthChecker(), metrics, registry, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	a.shutdown.RegisterServer(srv)

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("serving documentation")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Join(err, a.shutdown.Shutdown())
	case <-ctx.Done():
		return a.shutdown.WaitForShutdown(ctx)
	}
}
