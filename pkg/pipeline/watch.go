package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

// DefaultDebounce collapses bursts of writes from the parser into one build.
const DefaultDebounce = 500 * time.Millisecond

// Watcher rebuilds whenever the payload file changes.
type Watcher struct {
	builder  *Builder
	debounce time.Duration
	logger   *observability.Logger

	// built receives the outcome of every triggered build; used by tests.
	built chan error
}

// NewWatcher creates a watcher for the builder's payload file.
func NewWatcher(builder *Builder, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		builder:  builder,
		debounce: debounce,
		logger:   builder.logger.WithField("component", "watcher"),
	}
}

// Run watches until ctx is canceled. The payload's directory is watched
// rather than the file itself so atomic replace-by-rename is seen.
func (w *Watcher) Run(ctx context.Context) error {
	payload := w.builder.opts.PayloadPath
	if payload == "" {
		return ErrNoPayload
	}
	abs, err := filepath.Abs(payload)
	if err != nil {
		return fmt.Errorf("failed to resolve payload path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	w.logger.WithField("payload", abs).Info("watching payload for changes")

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.WithField("op", event.Op.String()).Debug("payload changed")
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("watcher error")
		case <-timer.C:
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	defer observability.RecoverPanic(w.logger, "watch rebuild")

	res, err := w.builder.Build(ctx)
	if err == nil {
		w.logger.Info(res.String())
	}
	if w.built != nil {
		w.built <- err
	}
}
