// Package telemetry registers Prometheus metrics for rule evaluation,
// exposed by internal/server's /metrics route.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ruleweave/ruleweave/internal/eval"
)

// Metrics for rule evaluation.
var (
	// evaluateDuration tracks the latency of one whole rules-file evaluation.
	evaluateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ruleweave_file_evaluate_duration_seconds",
		Help:    "Histogram of rules-file evaluation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// ruleEvaluations counts rule evaluations by status.
	ruleEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ruleweave_rule_evaluations_total",
		Help: "Total number of rule evaluations by outcome",
	}, []string{"status"})

	// fileEvaluations counts whole-file evaluations by status.
	fileEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ruleweave_file_evaluations_total",
		Help: "Total number of rules-file evaluations by outcome",
	}, []string{"status"})
)

// RecordRuleEvaluation records the outcome of one rule within a file.
func RecordRuleEvaluation(status eval.Status) {
	ruleEvaluations.WithLabelValues(status.String()).Inc()
}

// RecordFileEvaluation records the outcome of a whole-file evaluation,
// including the wall-clock duration it took.
func RecordFileEvaluation(duration time.Duration, status eval.Status) {
	evaluateDuration.Observe(duration.Seconds())
	fileEvaluations.WithLabelValues(status.String()).Inc()
}
