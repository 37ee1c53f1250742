package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "allocator"

var (
	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Résumé pipeline runs by terminal outcome.",
	}, []string{"outcome"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each résumé pipeline stage.",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"stage"})

	reasoningCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reasoning_calls_total",
		Help:      "Reasoning service calls by call shape and outcome.",
	}, []string{"call", "outcome"})

	reasoningLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reasoning_call_duration_seconds",
		Help:      "Latency of reasoning service calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 45, 90},
	}, []string{"call"})

	reallocationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reallocation_decisions_total",
		Help:      "Per-candidate decisions taken by reallocation sweeps.",
	}, []string{"decision"})
)

// Pipeline outcomes.
const (
	OutcomePersisted = "persisted"
	OutcomeDegraded  = "persisted_degraded"
	OutcomeAborted   = "aborted"
)

// Reasoning call outcomes.
const (
	CallOK       = "ok"
	CallError    = "error"
	CallTimeout  = "timeout"
	CallBadParse = "unparsable"
)

// Reallocation decisions.
const (
	DecisionAccepted = "accepted"
	DecisionRejected = "below_threshold"
	DecisionNoMatch  = "no_match"
	DecisionSkipped  = "skipped"
	DecisionFailed   = "failed"
)

func RecordPipelineRun(outcome string) {
	pipelineRuns.WithLabelValues(outcome).Inc()
}

func ObserveStage(stage string, elapsed time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func RecordReasoningCall(call, outcome string, elapsed time.Duration) {
	reasoningCalls.WithLabelValues(call, outcome).Inc()
	reasoningLatency.WithLabelValues(call).Observe(elapsed.Seconds())
}

func RecordReallocation(decision string) {
	reallocationDecisions.WithLabelValues(decision).Inc()
}
