// Package report builds and persists the machine-readable record of a
// deployment run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kilupskalvis/shopsync/internal/deploy"
	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

const (
	// DefaultMaxReports is how many reports Prune keeps by default
	DefaultMaxReports = 20

	filePrefix = "deployment-report-"
	fileSuffix = ".json"
)

// Duration is a duration in milliseconds with its display form
type Duration struct {
	Ms        int64  `json:"ms"`
	Formatted string `json:"formatted"`
}

func newDuration(d time.Duration) Duration {
	return Duration{Ms: d.Milliseconds(), Formatted: deploy.FormatDuration(d)}
}

// ChangeCounts counts planned operations
type ChangeCounts struct {
	Total   int `json:"total"`
	Creates int `json:"creates"`
	Updates int `json:"updates"`
	Deletes int `json:"deletes"`
}

// StageRecord is the persisted form of one stage
type StageRecord struct {
	Name       string                  `json:"name"`
	Status     deploy.Status           `json:"status"`
	Duration   Duration                `json:"duration"`
	Resilience resilience.StageMetrics `json:"resilience"`
	Entities   []deploy.EntityResult   `json:"entities,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// FieldChange is one field-level delta of a planned change
type FieldChange struct {
	Field       string      `json:"field"`
	From        interface{} `json:"from,omitempty"`
	To          interface{} `json:"to,omitempty"`
	Description string      `json:"description,omitempty"`
}

// ChangeRecord is one planned operation
type ChangeRecord struct {
	Operation  models.Operation  `json:"operation"`
	EntityType models.EntityType `json:"entityType"`
	EntityName string            `json:"entityName"`
	Fields     []FieldChange     `json:"fields,omitempty"`
}

// Document is the deployment report written to disk
type Document struct {
	RunID        string                    `json:"runId"`
	Timestamp    time.Time                 `json:"timestamp"`
	Status       deploy.Status             `json:"status"`
	Duration     Duration                  `json:"duration"`
	Changes      ChangeCounts              `json:"changes"`
	Summary      deploy.ResultSummary      `json:"summary"`
	Resilience   resilience.StageMetrics   `json:"resilience"`
	Stages       []StageRecord             `json:"stages"`
	Diff         []ChangeRecord            `json:"diff"`
	EntityCounts []models.EntityTypeCounts `json:"entityCounts"`
	Error        string                    `json:"error,omitempty"`
}

// Build assembles a report from a run result and the diff it applied. runErr
// is the error that halted the run, if any.
func Build(runID string, result *deploy.DeploymentResult, summary *models.DiffSummary, runErr error) *Document {
	doc := &Document{
		RunID:     runID,
		Timestamp: time.Now().UTC(),
	}
	if result != nil {
		doc.Status = result.Status
		doc.Duration = newDuration(result.Duration)
		doc.Summary = result.Summary
		if !result.StartTime.IsZero() {
			doc.Timestamp = result.StartTime.UTC()
		}
		if result.Metrics != nil {
			doc.Resilience = result.Metrics.Resilience
		}
		for _, s := range result.Stages {
			doc.Stages = append(doc.Stages, StageRecord{
				Name:       s.Name,
				Status:     s.Status,
				Duration:   newDuration(s.Duration),
				Resilience: s.Resilience,
				Entities:   s.Entities,
				Error:      s.Error,
			})
		}
	}
	if runErr != nil {
		doc.Error = runErr.Error()
		if doc.Status == "" || doc.Status == deploy.StatusSuccess {
			doc.Status = deploy.StatusFailed
		}
	}
	if summary != nil {
		doc.Changes = ChangeCounts{
			Total:   summary.TotalChanges,
			Creates: summary.Creates,
			Updates: summary.Updates,
			Deletes: summary.Deletes,
		}
		doc.EntityCounts = summary.CountByEntityType()
		for _, r := range summary.Results {
			rec := ChangeRecord{Operation: r.Operation, EntityType: r.EntityType, EntityName: r.EntityName}
			for _, c := range r.Changes {
				rec.Fields = append(rec.Fields, FieldChange{
					Field:       c.Field,
					From:        c.CurrentValue,
					To:          c.DesiredValue,
					Description: c.Description,
				})
			}
			doc.Diff = append(doc.Diff, rec)
		}
	}
	return doc
}

// FileName returns the report file name for a run started at ts
func FileName(ts time.Time, runID string) string {
	name := filePrefix + ts.UTC().Format("2006-01-02T15-04-05.000Z")
	if runID != "" {
		name += "-" + runID
	}
	return name + fileSuffix
}

// Write stores doc in dir, creating it if needed, and returns the file path.
// An existing report file is never overwritten.
func Write(dir string, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	path := filepath.Join(dir, FileName(doc.Timestamp, doc.RunID))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// Load reads a report written by Write
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &doc, nil
}

// Prune deletes the oldest reports in dir, by modification time, until at
// most keep remain. It returns the removed paths. A non-positive keep retains
// everything.
func Prune(dir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	type reportFile struct {
		path    string
		modTime time.Time
	}
	var files []reportFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, reportFile{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}
	if len(files) <= keep {
		return nil, nil
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path < files[j].path
		}
		return files[i].modTime.Before(files[j].modTime)
	})

	var removed []string
	for _, f := range files[:len(files)-keep] {
		if err := os.Remove(f.path); err != nil {
			return removed, fmt.Errorf("failed to remove report %s: %w", f.path, err)
		}
		removed = append(removed, f.path)
	}
	return removed, nil
}
