package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

func pendingCandidate(t *testing.T, h *harness) *models.ResumeResult {
	t.Helper()
	h.addPosition(t, "Data Analyst", true)
	h.script.set(func(s *script) {
		s.scores["Data Analyst"] = 65
		s.intention = statedIntention("Go Developer")
	})
	result := h.upload(t, englishResume)
	require.True(t, result.IsPending)
	return result
}

func TestCreatePositionReallocatesPendingCandidate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := pendingCandidate(t, h)

	h.script.set(func(s *script) {
		s.match = matchReply(true, 0.9)
		s.scores["Golang Engineer"] = 88
	})

	resp, err := h.positions.Create(ctx, models.CreatePositionRequest{Name: "Golang Engineer", Description: "Build services in Go"}, "admin")
	require.NoError(t, err)
	require.Len(t, resp.Reallocations, 1)

	change := resp.Reallocations[0]
	assert.Equal(t, pending.CandidateID, change.CandidateID)
	assert.Equal(t, "Data Analyst", change.OldPosition)
	assert.Equal(t, "Golang Engineer", change.NewPosition)
	assert.Equal(t, 23, change.ScoreImprovement)
	assert.InDelta(t, 0.9, change.Confidence, 1e-9)

	candidate, err := h.store.Candidates().FindByID(ctx, pending.CandidateID)
	require.NoError(t, err)
	assert.True(t, candidate.IsLocked)
	assert.False(t, candidate.IsPending)
	assert.Equal(t, "Golang Engineer", candidate.AssignedPositionName)
	assert.Equal(t, 88, candidate.AssignedScore)
	assert.Equal(t, 1, candidate.ReallocationCount)
	assert.NotNil(t, candidate.LastReallocatedAt)

	history, err := h.store.History().ListByCandidate(ctx, pending.CandidateID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.TriggerNewPosition, history[0].Trigger)
	assert.Equal(t, "admin", history[0].Actor)

	match, err := h.store.Matches().FindByPair(ctx, pending.CandidateID, resp.PositionID)
	require.NoError(t, err)
	assert.Equal(t, models.MethodBatch, match.Method)
	assert.Equal(t, models.GradeA, match.Grade)
}

func TestCreatePositionKeepsPendingBelowThreshold(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "low confidence", reply: matchReply(true, 0.5)},
		{name: "exactly threshold", reply: matchReply(true, 0.8)},
		{name: "no match", reply: matchReply(false, 0.95)},
		{name: "unparsable", reply: "maybe?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			pending := pendingCandidate(t, h)
			h.script.set(func(s *script) { s.match = tt.reply })

			resp, err := h.positions.Create(ctx, models.CreatePositionRequest{Name: "Site Reliability Engineer", Description: "Keep it running"}, "")
			require.NoError(t, err)
			assert.Empty(t, resp.Reallocations)

			candidate, err := h.store.Candidates().FindByID(ctx, pending.CandidateID)
			require.NoError(t, err)
			assert.True(t, candidate.IsPending)
			assert.Equal(t, "Data Analyst", candidate.AssignedPositionName)
			assert.Equal(t, pending.AssignedScore, candidate.AssignedScore)

			history, err := h.store.History().ListByCandidate(ctx, pending.CandidateID)
			require.NoError(t, err)
			assert.Empty(t, history)
		})
	}
}

func TestReallocationIgnoresCandidatesWithoutIntention(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addPosition(t, "Data Analyst", true)
	h.script.set(func(s *script) { s.scores["Data Analyst"] = 70 })
	free := h.upload(t, englishResume)

	h.script.set(func(s *script) { s.match = matchReply(true, 1) })
	resp, err := h.positions.Create(ctx, models.CreatePositionRequest{Name: "Golang Engineer", Description: "Go"}, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Reallocations)
	assert.NotContains(t, h.tasks(), TaskMatchIntention)

	candidate, err := h.store.Candidates().FindByID(ctx, free.CandidateID)
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", candidate.AssignedPositionName)
}

func TestApplyReallocationRejectsStaleVersion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending := pendingCandidate(t, h)
	position := h.addPosition(t, "Golang Engineer", true)

	candidate, err := h.store.Candidates().FindByID(ctx, pending.CandidateID)
	require.NoError(t, err)

	_, err = h.coordinator.ApplyReallocation(ctx, ReallocationRecord{
		CandidateID: candidate.ID,
		Version:     candidate.Version + 1,
		Position:    position,
		Evaluation:  Evaluation{PositionID: position.ID, PositionName: position.Name, Score: 90, Grade: models.GradeA},
		Match:       IntentionMatch{Match: true, Confidence: 0.95},
	})
	assert.ErrorIs(t, err, repositories.ErrConcurrentUpdate)

	after, err := h.store.Candidates().FindByID(ctx, pending.CandidateID)
	require.NoError(t, err)
	assert.True(t, after.IsPending)
	assert.Equal(t, candidate.Version, after.Version)
}

func TestReallocateSkipsInactivePosition(t *testing.T) {
	h := newHarness(t)
	pendingCandidate(t, h)
	h.script.set(func(s *script) { s.match = matchReply(true, 0.99) })

	svc := NewReallocationService(h.coordinator, nil, nil, DefaultMatchThreshold, nil)
	changes, err := svc.ReallocateForPosition(context.Background(), models.Position{ID: 99, Name: "Golang Engineer"}, "")
	require.NoError(t, err)
	assert.Empty(t, changes)
}
