package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilupskalvis/shopsync/internal/deploy"
	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

func sampleResult() *deploy.DeploymentResult {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &deploy.DeploymentResult{
		Status:    deploy.StatusPartial,
		StartTime: start,
		EndTime:   start.Add(90 * time.Second),
		Duration:  90 * time.Second,
		Stages: []deploy.StageResult{
			{Name: "Updating channels", Status: deploy.StatusSuccess, Duration: 2 * time.Second},
			{
				Name:     "Updating products",
				Status:   deploy.StatusPartial,
				Duration: 30 * time.Second,
				Entities: []deploy.EntityResult{
					{Name: "dune", EntityType: models.EntityProducts, Operation: models.OperationCreate, Success: true},
					{Name: "emma", EntityType: models.EntityProducts, Operation: models.OperationCreate, Error: "boom"},
				},
				Resilience: resilience.StageMetrics{RateLimitHits: 3, RetryAttempts: 4},
			},
			{Name: "Updating menus", Status: deploy.StatusSkipped},
		},
		Metrics: &deploy.Metrics{
			EntityCounts: map[models.EntityType]deploy.OperationCounts{
				models.EntityProducts: {Creates: 1},
				models.EntityChannels: {Updates: 2},
			},
		},
	}
}

func TestObserve(t *testing.T) {
	e := NewExporter()
	summary := models.NewDiffSummary([]*models.DiffResult{
		{Operation: models.OperationCreate, EntityType: models.EntityProducts, EntityName: "dune"},
		{Operation: models.OperationCreate, EntityType: models.EntityProducts, EntityName: "emma"},
		{Operation: models.OperationDelete, EntityType: models.EntityMenus, EntityName: "old"},
	})

	e.Observe(sampleResult(), summary)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.runInfo.WithLabelValues("partial")))
	assert.Equal(t, 90.0, testutil.ToFloat64(e.runDuration))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.plannedChanges.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.plannedChanges.WithLabelValues("delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.entityOps.WithLabelValues("products", "create")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.entityOps.WithLabelValues("channels", "update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.entityFailures.WithLabelValues("Updating products")))
	assert.Equal(t, 3.0, testutil.ToFloat64(e.resilienceTotal.WithLabelValues("Updating products", "rate_limit")))
	assert.Equal(t, 4.0, testutil.ToFloat64(e.resilienceTotal.WithLabelValues("Updating products", "retry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.stageStatus.WithLabelValues("Updating menus", "skipped")))

	// skipped stages carry only a status
	assert.Equal(t, 2, testutil.CollectAndCount(e.stageDuration))
}

func TestObserveReplacesPreviousRun(t *testing.T) {
	e := NewExporter()
	e.Observe(sampleResult(), nil)

	second := &deploy.DeploymentResult{Status: deploy.StatusSuccess, Duration: time.Second}
	e.Observe(second, nil)

	assert.Equal(t, 1, testutil.CollectAndCount(e.runInfo))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.runInfo.WithLabelValues("success")))
	assert.Equal(t, 0, testutil.CollectAndCount(e.stageDuration))
	assert.Equal(t, 0, testutil.CollectAndCount(e.entityOps))
}

func TestWriteFile(t *testing.T) {
	e := NewExporter()
	e.Observe(sampleResult(), nil)

	path := filepath.Join(t.TempDir(), "shopsync.prom")
	require.NoError(t, e.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE shopsync_deployment_duration_seconds gauge")
	assert.Contains(t, text, `shopsync_deployment_status{status="partial"} 1`)
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestWriteFileBadPath(t *testing.T) {
	e := NewExporter()
	err := e.WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.ErrorContains(t, err, "failed to write metrics file")
}
