// Package telemetry exports the metrics of a deployment run in the
// Prometheus text format, for node_exporter's textfile collector or any
// scraper that reads files.
package telemetry

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilupskalvis/shopsync/internal/deploy"
	"github.com/kilupskalvis/shopsync/internal/models"
)

const namespace = "shopsync"

// Exporter owns a private registry holding the gauges of the latest run
type Exporter struct {
	registry *prometheus.Registry

	runInfo         *prometheus.GaugeVec
	runDuration     prometheus.Gauge
	runTimestamp    prometheus.Gauge
	plannedChanges  *prometheus.GaugeVec
	entityOps       *prometheus.GaugeVec
	entityFailures  *prometheus.GaugeVec
	stageDuration   *prometheus.GaugeVec
	stageStatus     *prometheus.GaugeVec
	resilienceTotal *prometheus.GaugeVec
}

// NewExporter creates an exporter with every metric registered
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		runInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deployment_status",
			Help:      "Outcome of the last deployment, 1 for the reported status.",
		}, []string{"status"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deployment_duration_seconds",
			Help:      "Wall time of the last deployment.",
		}),
		runTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deployment_timestamp_seconds",
			Help:      "Unix time the last deployment started.",
		}),
		plannedChanges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "planned_changes",
			Help:      "Changes in the deployed diff by operation.",
		}, []string{"operation"}),
		entityOps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entity_operations",
			Help:      "Entity operations applied by section and operation.",
		}, []string{"entity_type", "operation"}),
		entityFailures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entity_failures",
			Help:      "Entity operations that failed, by stage.",
		}, []string{"stage"}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each executed stage.",
		}, []string{"stage"}),
		stageStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_status",
			Help:      "Outcome of each stage, 1 for the reported status.",
		}, []string{"stage", "status"}),
		resilienceTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resilience_events",
			Help:      "Rate limits, retries and errors observed by stage.",
		}, []string{"stage", "event"}),
	}
	e.registry.MustRegister(
		e.runInfo,
		e.runDuration,
		e.runTimestamp,
		e.plannedChanges,
		e.entityOps,
		e.entityFailures,
		e.stageDuration,
		e.stageStatus,
		e.resilienceTotal,
	)
	return e
}

// Registry exposes the registry for scraping or inspection
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe replaces the gauges with the values of one run. summary may be nil.
func (e *Exporter) Observe(result *deploy.DeploymentResult, summary *models.DiffSummary) {
	e.runInfo.Reset()
	e.plannedChanges.Reset()
	e.entityOps.Reset()
	e.entityFailures.Reset()
	e.stageDuration.Reset()
	e.stageStatus.Reset()
	e.resilienceTotal.Reset()

	if result == nil {
		return
	}

	e.runInfo.WithLabelValues(string(result.Status)).Set(1)
	e.runDuration.Set(result.Duration.Seconds())
	e.runTimestamp.Set(float64(result.StartTime.Unix()))

	if summary != nil {
		e.plannedChanges.WithLabelValues(opLabel(models.OperationCreate)).Set(float64(summary.Creates))
		e.plannedChanges.WithLabelValues(opLabel(models.OperationUpdate)).Set(float64(summary.Updates))
		e.plannedChanges.WithLabelValues(opLabel(models.OperationDelete)).Set(float64(summary.Deletes))
	}

	if m := result.Metrics; m != nil {
		for et, counts := range m.EntityCounts {
			label := et.Slug()
			e.entityOps.WithLabelValues(label, opLabel(models.OperationCreate)).Set(float64(counts.Creates))
			e.entityOps.WithLabelValues(label, opLabel(models.OperationUpdate)).Set(float64(counts.Updates))
			e.entityOps.WithLabelValues(label, opLabel(models.OperationDelete)).Set(float64(counts.Deletes))
		}
	}

	for _, s := range result.Stages {
		e.stageStatus.WithLabelValues(s.Name, string(s.Status)).Set(1)
		if s.Status == deploy.StatusSkipped {
			continue
		}
		e.stageDuration.WithLabelValues(s.Name).Set(s.Duration.Seconds())
		e.entityFailures.WithLabelValues(s.Name).Set(float64(len(s.Failed())))

		r := s.Resilience
		e.resilienceTotal.WithLabelValues(s.Name, "rate_limit").Set(float64(r.RateLimitHits))
		e.resilienceTotal.WithLabelValues(s.Name, "retry").Set(float64(r.RetryAttempts))
		e.resilienceTotal.WithLabelValues(s.Name, "graphql_error").Set(float64(r.GraphQLErrors))
		e.resilienceTotal.WithLabelValues(s.Name, "network_error").Set(float64(r.NetworkErrors))
	}
}

// WriteFile writes the registry atomically in the text exposition format
func (e *Exporter) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

func opLabel(op models.Operation) string {
	return strings.ToLower(string(op))
}
