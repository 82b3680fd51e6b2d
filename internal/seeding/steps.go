package seeding

import (
	"context"
	"time"

	"github.com/angelmondragon/activity-seeder/pkg/logger"
	"github.com/angelmondragon/activity-seeder/pkg/metrics"
)

// Step is one stage of a seeding run.
type Step interface {
	Name() string
	Run(ctx context.Context) error
}

type stepFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (s stepFunc) Name() string { return s.name }

func (s stepFunc) Run(ctx context.Context) error { return s.fn(ctx) }

// pipeline runs steps in order and stops at the first failure.
type pipeline struct {
	logg    *logger.Logger
	metrics *metrics.RunMetrics
	steps   []Step
}

func (p *pipeline) add(name string, fn func(ctx context.Context) error) {
	p.steps = append(p.steps, stepFunc{name: name, fn: fn})
}

func (p *pipeline) run(ctx context.Context) error {
	for _, step := range p.steps {
		if err := p.runStep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) runStep(ctx context.Context, step Step) error {
	stepCtx := p.logg.WithStep(ctx, step.Name())
	p.logg.Info(stepCtx, "step start")
	start := time.Now()
	err := step.Run(stepCtx)
	duration := time.Since(start)
	p.metrics.ObserveStep(step.Name(), duration)
	stepCtx = p.logg.WithField(stepCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		p.logg.Error(stepCtx, "step failed", err)
		p.metrics.IncFailure(step.Name())
		return err
	}
	p.logg.Info(stepCtx, "step completed")
	p.metrics.IncSuccess(step.Name())
	return nil
}
