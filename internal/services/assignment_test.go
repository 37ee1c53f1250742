package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-allocator/internal/models"
)

func TestReassign(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	backend := h.addPosition(t, "Python Backend Engineer", true)
	h.addPosition(t, "Data Analyst", true)
	h.script.set(func(s *script) {
		s.scores["Python Backend Engineer"] = 74
		s.scores["Data Analyst"] = 90
	})
	result := h.upload(t, englishResume)
	require.Equal(t, "Data Analyst", result.AssignedPosition)

	candidate, err := h.assignments.Reassign(ctx, result.CandidateID, backend.ID, "  team needs backend help ", "lead")
	require.NoError(t, err)
	assert.True(t, candidate.IsLocked)
	assert.False(t, candidate.IsPending)
	assert.Equal(t, "Python Backend Engineer", candidate.AssignedPositionName)
	assert.Equal(t, 74, candidate.AssignedScore)
	assert.Equal(t, 1, candidate.ReallocationCount)

	history, err := h.queries.History(ctx, result.CandidateID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.TriggerManual, history[0].Trigger)
	assert.Equal(t, "team needs backend help", history[0].Reason)
	assert.Equal(t, "Data Analyst", history[0].OldPositionName)
	assert.Equal(t, 90, history[0].OldScore)
	assert.Equal(t, "lead", history[0].Actor)
}

func TestReassignErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addPosition(t, "Data Analyst", true)
	h.script.set(func(s *script) { s.scores["Data Analyst"] = 90 })
	result := h.upload(t, englishResume)

	unevaluated := h.addPosition(t, "Golang Engineer", true)

	_, err := h.assignments.Reassign(ctx, result.CandidateID, unevaluated.ID, "try", "")
	assert.ErrorIs(t, err, ErrNoMatchRecord)

	_, err = h.assignments.Reassign(ctx, 9999, unevaluated.ID, "try", "")
	assert.ErrorIs(t, err, ErrCandidateNotFound)

	_, err = h.assignments.Reassign(ctx, result.CandidateID, 9999, "try", "")
	assert.ErrorIs(t, err, ErrPositionNotFound)

	history, err := h.store.History().ListByCandidate(ctx, result.CandidateID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReevaluateUpdatesMatchInPlace(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	analyst := h.addPosition(t, "Data Analyst", true)
	h.script.set(func(s *script) { s.scores["Data Analyst"] = 90 })
	result := h.upload(t, englishResume)

	before, err := h.store.Matches().FindByPair(ctx, result.CandidateID, analyst.ID)
	require.NoError(t, err)

	h.script.set(func(s *script) { s.scores["Data Analyst"] = 58 })
	match, err := h.assignments.Reevaluate(ctx, result.CandidateID, analyst.ID, "lead")
	require.NoError(t, err)
	assert.Equal(t, before.ID, match.ID)
	assert.Equal(t, 58, match.Score)
	assert.Equal(t, models.GradeD, match.Grade)
	assert.False(t, match.IsQualified)
	assert.Equal(t, models.MethodManual, match.Method)

	matches, err := h.store.Matches().ListByCandidate(ctx, result.CandidateID)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	candidate, err := h.store.Candidates().FindByID(ctx, result.CandidateID)
	require.NoError(t, err)
	assert.Equal(t, 90, candidate.AssignedScore)

	position, err := h.store.Positions().FindByID(ctx, analyst.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, position.QualifiedCandidates)
	assert.Equal(t, 1, position.GradeDCount)

	audit, err := h.queries.Audit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, audit, 2)
	assert.Equal(t, models.ActionReevaluateCandidate, audit[0].Action)
}
