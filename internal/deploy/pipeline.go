package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kilupskalvis/shopsync/internal/resilience"
)

// Pipeline runs stages in the order they were added. The first stage to
// return an error halts the run.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
}

// NewPipeline creates an empty pipeline
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// AddStage appends a stage and returns the pipeline for chaining
func (p *Pipeline) AddStage(s Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

// Stages returns the stages in execution order
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Execute runs every stage that is not skipped. Metrics are returned even
// when a stage fails; the error names the failing stage.
func (p *Pipeline) Execute(ctx context.Context, dc *Context) (*Metrics, error) {
	for _, stage := range p.stages {
		if stage.Skip != nil && stage.Skip(dc) {
			p.logger.Debug("skipping stage", "stage", stage.Name)
			dc.Results.Add(StageResult{Name: stage.Name, Status: StatusSkipped})
			continue
		}

		if err := ctx.Err(); err != nil {
			return dc.Metrics.Complete(), fmt.Errorf("stage %q not started: %w", stage.Name, err)
		}

		if err := p.runStage(ctx, dc, stage); err != nil {
			return dc.Metrics.Complete(), fmt.Errorf("stage %q failed: %w", stage.Name, err)
		}
	}
	return dc.Metrics.Complete(), nil
}

// Run executes the pipeline and builds the deployment result
func (p *Pipeline) Run(ctx context.Context, dc *Context) (*DeploymentResult, error) {
	metrics, err := p.Execute(ctx, dc)
	return dc.Results.Result(metrics), err
}

func (p *Pipeline) runStage(ctx context.Context, dc *Context, stage Stage) (err error) {
	p.logger.Info("running stage", "stage", stage.Name)
	started := time.Now()
	scope := dc.Metrics.StartStage(stage.Name)
	run := newStageRun(dc, stage, scope)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		duration := dc.Metrics.EndStage(stage.Name)
		entities := run.Entities()
		result := StageResult{
			Name:       stage.Name,
			Status:     stageStatus(entities, err),
			StartedAt:  started,
			Duration:   duration,
			Entities:   entities,
			Resilience: scope.Snapshot(),
		}
		if err != nil {
			result.Error = err.Error()
			var agg *StageAggregateError
			if !errors.As(err, &agg) {
				result.Status = StatusFailed
			}
		}
		dc.Results.Add(result)

		attrs := []any{"stage", stage.Name, "status", result.Status, "duration", duration}
		if m := result.Resilience; !m.IsZero() {
			attrs = append(attrs,
				"rate_limits", m.RateLimitHits,
				"retries", m.RetryAttempts,
				"graphql_errors", m.GraphQLErrors,
				"network_errors", m.NetworkErrors)
		}
		if err != nil {
			p.logger.Error("stage failed", append(attrs, "error", err)...)
		} else {
			p.logger.Info("stage finished", attrs...)
		}
	}()

	return stage.Execute(resilience.WithScope(ctx, scope), run)
}
