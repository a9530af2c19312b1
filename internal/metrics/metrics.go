// Package metrics exposes the service's Prometheus collectors. All
// collectors are registered on the default registry and served by the
// /metrics endpoint in the server binary.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts pipeline runs by mode and terminal status
	// (done, error).
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enhance_runs_total",
		Help: "Pipeline runs by mode and terminal status.",
	}, []string{"mode", "status"})

	// StageDuration observes per-stage wall time.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "enhance_stage_duration_seconds",
		Help:    "Wall time per pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"mode", "stage"})

	// StageFaults counts recoverable stage faults (identity
	// substitutions).
	StageFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enhance_stage_faults_total",
		Help: "Recoverable stage faults substituted with identity.",
	}, []string{"mode", "stage"})

	// LowConfidenceResults counts restoration runs flagged by the quality
	// assurance check.
	LowConfidenceResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enhance_low_confidence_results_total",
		Help: "Restoration runs flagged low confidence by the QA check.",
	})
)
