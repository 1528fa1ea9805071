package report

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilupskalvis/shopsync/internal/deploy"
	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *deploy.DeploymentResult {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stages := []deploy.StageResult{
		{
			Name:       deploy.StageProducts,
			Status:     deploy.StatusPartial,
			Duration:   1500 * time.Millisecond,
			Resilience: resilience.StageMetrics{RateLimitHits: 2, RetryAttempts: 1},
			Entities: []deploy.EntityResult{
				{Name: "Tee", EntityType: models.EntityProducts, Operation: models.OperationCreate, Success: true},
				{Name: "Hoodie", EntityType: models.EntityProducts, Operation: models.OperationCreate, Error: "Category not found"},
			},
		},
		{Name: deploy.StageMenus, Status: deploy.StatusSkipped},
	}
	return &deploy.DeploymentResult{
		Status:    deploy.OverallStatus(stages),
		StartTime: start,
		EndTime:   start.Add(2 * time.Second),
		Duration:  2 * time.Second,
		Stages:    stages,
		Summary:   deploy.Summarize(stages),
		Metrics:   &deploy.Metrics{Resilience: resilience.StageMetrics{RateLimitHits: 2, RetryAttempts: 1}},
	}
}

func sampleSummary() *models.DiffSummary {
	return models.NewDiffSummary([]*models.DiffResult{
		{Operation: models.OperationCreate, EntityType: models.EntityProducts, EntityName: "Tee"},
		{Operation: models.OperationCreate, EntityType: models.EntityProducts, EntityName: "Hoodie"},
		{Operation: models.OperationUpdate, EntityType: models.EntityCategories, EntityName: "Shirts",
			Changes: []models.DiffChange{{Field: "name", CurrentValue: "Shirt", DesiredValue: "Shirts"}}},
	})
}

func TestBuild(t *testing.T) {
	doc := Build("01HXYZ", sampleResult(), sampleSummary(), nil)

	assert.Equal(t, "01HXYZ", doc.RunID)
	assert.Equal(t, deploy.StatusPartial, doc.Status)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), doc.Timestamp)
	assert.Equal(t, Duration{Ms: 2000, Formatted: "2.0s"}, doc.Duration)
	assert.Equal(t, ChangeCounts{Total: 3, Creates: 2, Updates: 1}, doc.Changes)
	assert.Equal(t, 2, doc.Resilience.RateLimitHits)

	require.Len(t, doc.Stages, 2)
	assert.Equal(t, Duration{Ms: 1500, Formatted: "1.5s"}, doc.Stages[0].Duration)
	assert.Equal(t, 1, doc.Stages[0].Resilience.RetryAttempts)
	assert.Len(t, doc.Stages[0].Entities, 2)

	require.Len(t, doc.Diff, 3)
	require.Len(t, doc.Diff[2].Fields, 1)
	assert.Equal(t, FieldChange{Field: "name", From: "Shirt", To: "Shirts"}, doc.Diff[2].Fields[0])

	assert.Equal(t, []models.EntityTypeCounts{
		{EntityType: models.EntityProducts, Creates: 2},
		{EntityType: models.EntityCategories, Updates: 1},
	}, doc.EntityCounts)
}

func TestBuild_RunErrorMarksFailure(t *testing.T) {
	doc := Build("id", nil, nil, errors.New(`stage "Managing channels" failed`))
	assert.Equal(t, deploy.StatusFailed, doc.Status)
	assert.Contains(t, doc.Error, "Managing channels")
	assert.False(t, doc.Timestamp.IsZero())
}

func TestWriteAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	doc := Build("01HXYZ", sampleResult(), sampleSummary(), nil)

	path, err := Write(dir, doc)
	require.NoError(t, err)
	assert.Equal(t, "deployment-report-2026-03-01T12-00-00.000Z-01HXYZ.json", filepath.Base(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc.RunID, loaded.RunID)
	assert.Equal(t, doc.Status, loaded.Status)
	assert.Equal(t, doc.Duration, loaded.Duration)
	assert.Equal(t, doc.Changes, loaded.Changes)
	assert.Len(t, loaded.Diff, 3)
}

func TestWrite_SameInstantDifferentRuns(t *testing.T) {
	dir := t.TempDir()
	first := Build("01HXYZA", sampleResult(), sampleSummary(), nil)
	second := Build("01HXYZB", sampleResult(), sampleSummary(), nil)
	require.True(t, first.Timestamp.Equal(second.Timestamp))

	p1, err := Write(dir, first)
	require.NoError(t, err)
	p2, err := Write(dir, second)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)

	loaded, err := Load(p1)
	require.NoError(t, err)
	assert.Equal(t, "01HXYZA", loaded.RunID)
}

func TestWrite_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	doc := Build("01HXYZ", sampleResult(), sampleSummary(), nil)

	_, err := Write(dir, doc)
	require.NoError(t, err)
	_, err = Write(dir, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse report")
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	var paths []string
	for i := 0; i < 5; i++ {
		p := filepath.Join(dir, FileName(base.Add(time.Duration(i)*time.Minute), ""))
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0644))
		mod := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, mod, mod))
		paths = append(paths, p)
	}
	unrelated := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0644))

	removed, err := Prune(dir, 3)
	require.NoError(t, err)
	assert.Equal(t, paths[:2], removed)

	for _, p := range paths[:2] {
		assert.NoFileExists(t, p)
	}
	for _, p := range paths[2:] {
		assert.FileExists(t, p)
	}
	assert.FileExists(t, unrelated)
}

func TestPrune_NoOp(t *testing.T) {
	removed, err := Prune(filepath.Join(t.TempDir(), "missing"), 3)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = Prune(t.TempDir(), 0)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestNewRunID(t *testing.T) {
	now := time.Now()
	a, err := NewRunID(now)
	require.NoError(t, err)
	b, err := NewRunID(now)
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}
