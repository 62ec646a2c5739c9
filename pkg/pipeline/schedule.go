package pipeline

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

// Scheduler rebuilds on a cron schedule, e.g. "*/15 * * * *".
type Scheduler struct {
	builder *Builder
	cron    *cron.Cron
	logger  *observability.Logger
}

// NewScheduler validates spec and registers the rebuild job.
func NewScheduler(ctx context.Context, builder *Builder, spec string) (*Scheduler, error) {
	s := &Scheduler{
		builder: builder,
		cron:    cron.New(),
		logger:  builder.logger.WithField("component", "scheduler"),
	}

	if _, err := s.cron.AddFunc(spec, func() { s.run(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid rebuild schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running scheduled builds in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("rebuild schedule started")
}

// Stop halts the schedule and waits for a running build to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run(ctx context.Context) {
	defer observability.RecoverPanic(s.logger, "scheduled rebuild")

	if ctx.Err() != nil {
		return
	}
	res, err := s.builder.Build(ctx)
	if err != nil {
		return
	}
	s.logger.Info(res.String())
}
