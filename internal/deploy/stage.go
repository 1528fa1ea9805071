package deploy

import (
	"context"
	"sync"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

// Stage is one named unit of the pipeline. Skip may be nil.
type Stage struct {
	Name       string
	EntityType models.EntityType
	Execute    func(ctx context.Context, run *StageRun) error
	Skip       func(*Context) bool
}

// StageRun is handed to a stage while it executes. It exposes the shared
// context, the stage's resilience scope and the entity outcome recorder.
type StageRun struct {
	*Context
	Stage      Stage
	Resilience *resilience.Scope

	mu       sync.Mutex
	entities []EntityResult
}

func newStageRun(dc *Context, stage Stage, scope *resilience.Scope) *StageRun {
	return &StageRun{Context: dc, Stage: stage, Resilience: scope}
}

// Succeeded records an applied entity operation
func (r *StageRun) Succeeded(name string, op models.Operation) {
	r.record(EntityResult{Name: name, EntityType: r.Stage.EntityType, Operation: op, Success: true})
	if r.Metrics != nil {
		r.Metrics.RecordEntity(r.Stage.EntityType, op)
	}
}

// Failed records an entity operation that could not be applied
func (r *StageRun) Failed(name string, op models.Operation, err error) {
	msg := err.Error()
	r.record(EntityResult{
		Name:        name,
		EntityType:  r.Stage.EntityType,
		Operation:   op,
		Error:       msg,
		Suggestions: apperr.Suggest(msg),
	})
	r.Logger.Warn("entity operation failed",
		"stage", r.Stage.Name,
		"entity", name,
		"operation", op,
		"error", msg)
}

func (r *StageRun) record(e EntityResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append(r.entities, e)
}

// Entities returns a copy of the outcomes recorded so far
func (r *StageRun) Entities() []EntityResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EntityResult(nil), r.entities...)
}

// aggregate returns a StageAggregateError when any entity failed
func (r *StageRun) aggregate() error {
	agg := &StageAggregateError{Stage: r.Stage.Name}
	for _, e := range r.Entities() {
		if e.Success {
			agg.Successes = append(agg.Successes, e.Name)
		} else {
			agg.Failures = append(agg.Failures, EntityFailure{Name: e.Name, Err: errorString(e.Error)})
		}
	}
	if len(agg.Failures) == 0 {
		return nil
	}
	return agg
}

type errorString string

func (e errorString) Error() string { return string(e) }
