package deploy

import (
	"fmt"

	"github.com/kilupskalvis/shopsync/internal/apperr"
)

// EntityFailure pairs a failed entity with its error
type EntityFailure struct {
	Name string
	Err  error
}

// StageAggregateError reports a stage in which some entities failed. It
// carries the full breakdown so it can be rendered entity by entity.
type StageAggregateError struct {
	Stage     string
	Failures  []EntityFailure
	Successes []string
}

func (e *StageAggregateError) Error() string {
	total := len(e.Failures) + len(e.Successes)
	if len(e.Failures) == 1 {
		return fmt.Sprintf("%s: %d of %d entities failed: %s: %v",
			e.Stage, len(e.Failures), total, e.Failures[0].Name, e.Failures[0].Err)
	}
	return fmt.Sprintf("%s: %d of %d entities failed", e.Stage, len(e.Failures), total)
}

// ErrorKind classifies the error for exit codes and rendering
func (e *StageAggregateError) ErrorKind() apperr.Kind {
	return apperr.KindStageAggregate
}

// DetailLines enumerates successes and failures with recovery hints
func (e *StageAggregateError) DetailLines() []string {
	var lines []string
	for _, name := range e.Successes {
		lines = append(lines, "✓ "+name)
	}
	for _, f := range e.Failures {
		lines = append(lines, failureLines(f.Name, f.Err.Error())...)
	}
	return lines
}

func failureLines(name, msg string) []string {
	lines := []string{fmt.Sprintf("✗ %s: %s", name, msg)}
	for _, s := range apperr.Suggest(msg) {
		lines = append(lines, "    → "+s)
	}
	return lines
}

// PartialDeploymentError summarizes a run that completed with failures
type PartialDeploymentError struct {
	Completed []string
	Failed    []EntityResult
}

// NewPartialDeploymentError builds the error from a run result
func NewPartialDeploymentError(r *DeploymentResult) *PartialDeploymentError {
	e := &PartialDeploymentError{}
	for _, s := range r.Stages {
		for _, ent := range s.Succeeded() {
			e.Completed = append(e.Completed, fmt.Sprintf("%s %s %q", ent.Operation.Verb(), ent.EntityType, ent.Name))
		}
		e.Failed = append(e.Failed, s.Failed()...)
	}
	return e
}

func (e *PartialDeploymentError) Error() string {
	return fmt.Sprintf("%d operations completed, %d failed", len(e.Completed), len(e.Failed))
}

// ErrorKind classifies the error for exit codes and rendering
func (e *PartialDeploymentError) ErrorKind() apperr.Kind {
	return apperr.KindPartialDeployment
}

// DetailLines lists completed and failed operations
func (e *PartialDeploymentError) DetailLines() []string {
	var lines []string
	if len(e.Completed) > 0 {
		lines = append(lines, "Completed:")
		for _, c := range e.Completed {
			lines = append(lines, "  ✓ "+c)
		}
	}
	if len(e.Failed) > 0 {
		lines = append(lines, "Failed:")
		for _, f := range e.Failed {
			for _, l := range failureLines(fmt.Sprintf("%s %q", f.EntityType, f.Name), f.Error) {
				lines = append(lines, "  "+l)
			}
		}
	}
	return lines
}
