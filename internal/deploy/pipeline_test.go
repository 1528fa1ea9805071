package deploy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestContext(summary *models.DiffSummary) *Context {
	return NewContext(newMockServices(), newMockAttributes(), models.Empty(), summary, Args{}, discardLogger())
}

func countingStage(name string, calls *int, err error) Stage {
	return Stage{
		Name: name,
		Execute: func(context.Context, *StageRun) error {
			*calls++
			return err
		},
	}
}

func TestPipeline_FailFast(t *testing.T) {
	var a, b, c int
	p := NewPipeline(discardLogger()).
		AddStage(countingStage("Stage A", &a, nil)).
		AddStage(countingStage("Stage B", &b, errors.New("boom"))).
		AddStage(countingStage("Stage C", &c, nil))

	dc := newTestContext(nil)
	metrics, err := p.Execute(context.Background(), dc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Stage B")
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 0, c)

	require.NotNil(t, metrics)
	assert.Equal(t, []string{"Stage A", "Stage B"}, metrics.StageOrder)

	stages := dc.Results.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, StatusSuccess, stages[0].Status)
	assert.Equal(t, StatusFailed, stages[1].Status)
	assert.Equal(t, "boom", stages[1].Error)
}

func TestPipeline_Completes(t *testing.T) {
	var a, b int
	p := NewPipeline(discardLogger()).
		AddStage(countingStage("A", &a, nil)).
		AddStage(countingStage("B", &b, nil))

	result, err := p.Run(context.Background(), newTestContext(nil))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 2, result.Summary.CompletedStages)
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestPipeline_SkippedStagesAreRecorded(t *testing.T) {
	var calls int
	stage := countingStage("Skipped", &calls, nil)
	stage.Skip = func(*Context) bool { return true }

	dc := newTestContext(nil)
	metrics, err := NewPipeline(discardLogger()).AddStage(stage).Execute(context.Background(), dc)
	require.NoError(t, err)

	assert.Zero(t, calls)
	assert.Empty(t, metrics.StageOrder)
	stages := dc.Results.Stages()
	require.Len(t, stages, 1)
	assert.Equal(t, StatusSkipped, stages[0].Status)
}

func TestPipeline_PanicFailsStage(t *testing.T) {
	var after int
	p := NewPipeline(discardLogger()).
		AddStage(Stage{Name: "Explodes", Execute: func(context.Context, *StageRun) error { panic("kaboom") }}).
		AddStage(countingStage("After", &after, nil))

	_, err := p.Execute(context.Background(), newTestContext(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `stage "Explodes" failed`)
	assert.Contains(t, err.Error(), "kaboom")
	assert.Zero(t, after)
}

func TestPipeline_CancelledContextStopsBeforeNextStage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var second int
	p := NewPipeline(discardLogger()).
		AddStage(Stage{Name: "Cancels", Execute: func(context.Context, *StageRun) error {
			cancel()
			return nil
		}}).
		AddStage(countingStage("Second", &second, nil))

	_, err := p.Execute(ctx, newTestContext(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, second)
}

func TestPipeline_ResilienceAccounting(t *testing.T) {
	p := NewPipeline(discardLogger()).
		AddStage(Stage{Name: "Products", Execute: func(ctx context.Context, run *StageRun) error {
			resilience.Record(ctx, resilience.EventRateLimit)
			resilience.Record(ctx, resilience.EventRateLimit)
			run.Resilience.RecordRetry()
			return nil
		}}).
		AddStage(Stage{Name: "Menus", Execute: func(ctx context.Context, run *StageRun) error {
			resilience.Record(ctx, resilience.EventNetworkError)
			resilience.Record(ctx, resilience.EventGraphQLError)
			return nil
		}})

	dc := newTestContext(nil)
	result, err := p.Run(context.Background(), dc)
	require.NoError(t, err)

	m := result.Metrics
	assert.Equal(t, resilience.StageMetrics{RateLimitHits: 2, RetryAttempts: 1}, m.StageResilience["Products"])
	assert.Equal(t, resilience.StageMetrics{GraphQLErrors: 1, NetworkErrors: 1}, m.StageResilience["Menus"])
	assert.Equal(t, resilience.StageMetrics{RateLimitHits: 2, RetryAttempts: 1, GraphQLErrors: 1, NetworkErrors: 1}, m.Resilience)

	assert.Equal(t, resilience.StageMetrics{RateLimitHits: 2, RetryAttempts: 1}, result.Stages[0].Resilience)
}

func TestPipeline_StageAggregateKeepsBreakdown(t *testing.T) {
	p := NewPipeline(discardLogger()).AddStage(Stage{
		Name:       "Channels",
		EntityType: models.EntityChannels,
		Execute: func(_ context.Context, run *StageRun) error {
			run.Succeeded("Default", models.OperationCreate)
			run.Failed("Wholesale", models.OperationCreate, errors.New(`channel "wholesale" not found`))
			return run.aggregate()
		},
	})

	result, err := p.Run(context.Background(), newTestContext(nil))
	require.Error(t, err)

	var agg *StageAggregateError
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, []string{"Default"}, agg.Successes)
	require.Len(t, agg.Failures, 1)
	assert.Equal(t, apperr.KindStageAggregate, apperr.Classify(err))
	assert.Equal(t, apperr.ExitPartialFailure, apperr.ExitCodeFor(err))

	require.Len(t, result.Stages, 1)
	assert.Equal(t, StatusPartial, result.Stages[0].Status)
	assert.Equal(t, StatusPartial, result.Status)
}
