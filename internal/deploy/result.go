package deploy

import (
	"sync"
	"time"

	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

// Status is the outcome of a stage or of a whole run
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// EntityResult is the outcome of one entity operation
type EntityResult struct {
	Name        string            `json:"name"`
	EntityType  models.EntityType `json:"entityType"`
	Operation   models.Operation  `json:"operation"`
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// StageResult is the outcome of one stage
type StageResult struct {
	Name       string                  `json:"name"`
	Status     Status                  `json:"status"`
	StartedAt  time.Time               `json:"startedAt"`
	Duration   time.Duration           `json:"duration"`
	Entities   []EntityResult          `json:"entities,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Resilience resilience.StageMetrics `json:"resilience"`
}

// Succeeded returns the entities that were applied
func (s StageResult) Succeeded() []EntityResult {
	return s.filter(true)
}

// Failed returns the entities that could not be applied
func (s StageResult) Failed() []EntityResult {
	return s.filter(false)
}

func (s StageResult) filter(success bool) []EntityResult {
	var out []EntityResult
	for _, e := range s.Entities {
		if e.Success == success {
			out = append(out, e)
		}
	}
	return out
}

// stageStatus derives a stage status from its entity outcomes
func stageStatus(entities []EntityResult, stageErr error) Status {
	ok, failed := 0, 0
	for _, e := range entities {
		if e.Success {
			ok++
		} else {
			failed++
		}
	}
	switch {
	case failed == 0 && stageErr == nil:
		return StatusSuccess
	case failed == 0:
		return StatusFailed
	case ok == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// ResultSummary rolls up entity and stage counts
type ResultSummary struct {
	TotalEntities      int `json:"totalEntities"`
	SuccessfulEntities int `json:"successfulEntities"`
	FailedEntities     int `json:"failedEntities"`
	CompletedStages    int `json:"completedStages"`
	PartialStages      int `json:"partialStages"`
	FailedStages       int `json:"failedStages"`
	SkippedStages      int `json:"skippedStages"`
}

// DeploymentResult is the outcome of a whole run
type DeploymentResult struct {
	Status    Status        `json:"status"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
	Stages    []StageResult `json:"stages"`
	Summary   ResultSummary `json:"summary"`
	Metrics   *Metrics      `json:"-"`
}

// FailedEntities returns every failed entity across stages
func (r *DeploymentResult) FailedEntities() []EntityResult {
	var out []EntityResult
	for _, s := range r.Stages {
		out = append(out, s.Failed()...)
	}
	return out
}

// OverallStatus applies the run status rule: success when no stage failed,
// partial when some work failed while other work succeeded, failed when
// nothing succeeded
func OverallStatus(stages []StageResult) Status {
	ran, succeeded, partial, failed := 0, 0, 0, 0
	for _, s := range stages {
		switch s.Status {
		case StatusSkipped:
			continue
		case StatusSuccess:
			succeeded++
		case StatusPartial:
			partial++
		case StatusFailed:
			failed++
		}
		ran++
	}
	switch {
	case ran == 0:
		return StatusSuccess
	case partial == 0 && failed == 0:
		return StatusSuccess
	case succeeded > 0 || partial > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// Summarize computes the rolled-up counts of stages
func Summarize(stages []StageResult) ResultSummary {
	var s ResultSummary
	for _, st := range stages {
		switch st.Status {
		case StatusSkipped:
			s.SkippedStages++
		case StatusSuccess:
			s.CompletedStages++
		case StatusPartial:
			s.PartialStages++
		case StatusFailed:
			s.FailedStages++
		}
		for _, e := range st.Entities {
			s.TotalEntities++
			if e.Success {
				s.SuccessfulEntities++
			} else {
				s.FailedEntities++
			}
		}
	}
	return s
}

// ResultCollector accumulates stage results in execution order
type ResultCollector struct {
	mu     sync.Mutex
	stages []StageResult
}

// NewResultCollector returns an empty collector
func NewResultCollector() *ResultCollector {
	return &ResultCollector{}
}

// Add records a stage result
func (c *ResultCollector) Add(r StageResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = append(c.stages, r)
}

// Stages returns a copy of the recorded stage results
func (c *ResultCollector) Stages() []StageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]StageResult(nil), c.stages...)
}

// Result builds the deployment result. Metrics may be nil.
func (c *ResultCollector) Result(m *Metrics) *DeploymentResult {
	stages := c.Stages()
	r := &DeploymentResult{
		Status:  OverallStatus(stages),
		Stages:  stages,
		Summary: Summarize(stages),
		Metrics: m,
	}
	if m != nil {
		r.StartTime = m.StartTime
		r.EndTime = m.EndTime
		r.Duration = m.Duration
	}
	return r
}
