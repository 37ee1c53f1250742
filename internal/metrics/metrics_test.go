package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPipelineRun(t *testing.T) {
	before := testutil.ToFloat64(pipelineRuns.WithLabelValues(OutcomeAborted))
	RecordPipelineRun(OutcomeAborted)
	assert.InDelta(t, before+1, testutil.ToFloat64(pipelineRuns.WithLabelValues(OutcomeAborted)), 1e-9)
}

func TestRecordReasoningCall(t *testing.T) {
	before := testutil.ToFloat64(reasoningCalls.WithLabelValues("evaluate", CallTimeout))
	RecordReasoningCall("evaluate", CallTimeout, 2*time.Second)
	assert.InDelta(t, before+1, testutil.ToFloat64(reasoningCalls.WithLabelValues("evaluate", CallTimeout)), 1e-9)
}

func TestRecordReallocation(t *testing.T) {
	before := testutil.ToFloat64(reallocationDecisions.WithLabelValues(DecisionRejected))
	RecordReallocation(DecisionRejected)
	RecordReallocation(DecisionRejected)
	assert.InDelta(t, before+2, testutil.ToFloat64(reallocationDecisions.WithLabelValues(DecisionRejected)), 1e-9)
}
