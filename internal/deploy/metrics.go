package deploy

import (
	"sync"
	"time"

	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

// OperationCounts counts applied operations of one section
type OperationCounts struct {
	Creates int `json:"creates"`
	Updates int `json:"updates"`
	Deletes int `json:"deletes"`
}

// Total returns the sum of all operations
func (c OperationCounts) Total() int {
	return c.Creates + c.Updates + c.Deletes
}

// Metrics is an immutable view of one run. Maps are copies owned by the
// caller.
type Metrics struct {
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	StageOrder      []string
	StageDurations  map[string]time.Duration
	EntityCounts    map[models.EntityType]OperationCounts
	StageResilience map[string]resilience.StageMetrics
	Resilience      resilience.StageMetrics
}

// TotalEntities returns the number of entity operations recorded
func (m *Metrics) TotalEntities() int {
	total := 0
	for _, c := range m.EntityCounts {
		total += c.Total()
	}
	return total
}

// MetricsCollector records stage timings, entity operations and the
// resilience snapshot of every stage
type MetricsCollector struct {
	mu          sync.Mutex
	tracker     *resilience.Tracker
	start       time.Time
	end         time.Time
	stageStarts map[string]time.Time
	durations   map[string]time.Duration
	order       []string
	entities    map[models.EntityType]OperationCounts
	stageStats  map[string]resilience.StageMetrics
}

// NewMetricsCollector creates a collector fed by tracker
func NewMetricsCollector(tracker *resilience.Tracker) *MetricsCollector {
	if tracker == nil {
		tracker = resilience.NewTracker(nil)
	}
	return &MetricsCollector{
		tracker:     tracker,
		start:       time.Now(),
		stageStarts: make(map[string]time.Time),
		durations:   make(map[string]time.Duration),
		entities:    make(map[models.EntityType]OperationCounts),
		stageStats:  make(map[string]resilience.StageMetrics),
	}
}

// StartStage starts the stage timer and opens its resilience scope
func (m *MetricsCollector) StartStage(name string) *resilience.Scope {
	m.mu.Lock()
	m.stageStarts[name] = time.Now()
	m.mu.Unlock()
	return m.tracker.StartStage(name)
}

// EndStage stops the stage timer and captures its resilience snapshot
func (m *MetricsCollector) EndStage(name string) time.Duration {
	snapshot, ok := m.tracker.EndStage()

	m.mu.Lock()
	defer m.mu.Unlock()
	started, running := m.stageStarts[name]
	if !running {
		return 0
	}
	delete(m.stageStarts, name)
	d := time.Since(started)
	if _, seen := m.durations[name]; !seen {
		m.order = append(m.order, name)
	}
	m.durations[name] = d
	if ok {
		m.stageStats[name] = snapshot
	}
	return d
}

// RecordEntity counts one applied operation
func (m *MetricsCollector) RecordEntity(entityType models.EntityType, op models.Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.entities[entityType]
	switch op {
	case models.OperationCreate:
		c.Creates++
	case models.OperationUpdate:
		c.Updates++
	case models.OperationDelete:
		c.Deletes++
	default:
		return
	}
	m.entities[entityType] = c
}

// Complete marks the run finished and returns its metrics
func (m *MetricsCollector) Complete() *Metrics {
	m.mu.Lock()
	if m.end.IsZero() {
		m.end = time.Now()
	}
	m.mu.Unlock()
	return m.Metrics()
}

// Metrics returns a copy of the current metrics
func (m *MetricsCollector) Metrics() *Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	end := m.end
	if end.IsZero() {
		end = time.Now()
	}
	out := &Metrics{
		StartTime:       m.start,
		EndTime:         end,
		Duration:        end.Sub(m.start),
		StageOrder:      append([]string(nil), m.order...),
		StageDurations:  make(map[string]time.Duration, len(m.durations)),
		EntityCounts:    make(map[models.EntityType]OperationCounts, len(m.entities)),
		StageResilience: make(map[string]resilience.StageMetrics, len(m.stageStats)),
	}
	for k, v := range m.durations {
		out.StageDurations[k] = v
	}
	for k, v := range m.entities {
		out.EntityCounts[k] = v
	}
	for k, v := range m.stageStats {
		out.StageResilience[k] = v
		out.Resilience = out.Resilience.Add(v)
	}
	return out
}
