package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

func TestProcessAbortsWithoutActivePositions(t *testing.T) {
	h := newHarness(t)
	h.addPosition(t, "Archived Role", false)

	_, err := h.pipeline.Process(context.Background(), ResumeInput{Filename: "cv.txt", Data: []byte(englishResume)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoActivePositions)

	var perr *PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageExtracting, perr.Stage)

	count, err := h.store.Candidates().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, h.gen.Calls())
}

func TestProcessRejectsUnreadableDocument(t *testing.T) {
	h := newHarness(t)
	h.addPosition(t, "Data Analyst", true)

	_, err := h.pipeline.Process(context.Background(), ResumeInput{Filename: "cv.docx", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Empty(t, h.gen.Calls())
}

func TestProcessAllocation(t *testing.T) {
	tests := []struct {
		name         string
		intention    string
		wantPosition string
		wantScore    int
		wantLocked   bool
		wantPending  bool
	}{
		{
			name:         "no intention takes best score",
			wantPosition: "Data Analyst",
			wantScore:    91,
		},
		{
			name:         "stated intention locks even with lower score",
			intention:    statedIntention("python backend engineer"),
			wantPosition: "Python Backend Engineer",
			wantScore:    72,
			wantLocked:   true,
		},
		{
			name:         "unknown intention is pending on best score",
			intention:    statedIntention("Go Developer"),
			wantPosition: "Data Analyst",
			wantScore:    91,
			wantPending:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			backend := h.addPosition(t, "Python Backend Engineer", true)
			analyst := h.addPosition(t, "Data Analyst", true)
			h.script.set(func(s *script) {
				s.scores["Python Backend Engineer"] = 72
				s.scores["Data Analyst"] = 91
				if tt.intention != "" {
					s.intention = tt.intention
				}
			})

			result := h.upload(t, englishResume)

			assert.Equal(t, "Ada Lovelace", result.Name)
			assert.Equal(t, tt.wantPosition, result.AssignedPosition)
			assert.Equal(t, tt.wantScore, result.AssignedScore)
			assert.Equal(t, tt.wantLocked, result.IsLocked)
			assert.Equal(t, tt.wantPending, result.IsPending)
			assert.Empty(t, result.Degraded)
			require.Len(t, result.Evaluations, 2)

			ctx := context.Background()
			candidate, err := h.store.Candidates().FindByID(ctx, result.CandidateID)
			require.NoError(t, err)
			require.NoError(t, candidate.CheckInvariants())
			assert.Equal(t, tt.wantPending, candidate.IsPending)

			matches, err := h.store.Matches().ListByCandidate(ctx, result.CandidateID)
			require.NoError(t, err)
			require.Len(t, matches, 2)
			for _, m := range matches {
				assert.Equal(t, models.MethodInitial, m.Method)
			}

			history, err := h.store.History().ListByCandidate(ctx, result.CandidateID)
			require.NoError(t, err)
			assert.Empty(t, history)

			snapshots, err := h.store.Snapshots().ListByCandidate(ctx, result.CandidateID)
			require.NoError(t, err)
			assert.Len(t, snapshots, 1)

			audit, err := h.store.Audit().List(ctx, 10)
			require.NoError(t, err)
			require.Len(t, audit, 1)
			assert.Equal(t, models.ActionResumeUploaded, audit[0].Action)

			stats, err := h.queries.PositionStats(ctx, analyst.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, stats.Total)
			assert.Equal(t, 1, stats.Qualified)

			stats, err = h.queries.PositionStats(ctx, backend.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, stats.Total)
		})
	}
}

func TestProcessKeepsDegradedEvaluation(t *testing.T) {
	h := newHarness(t)
	h.addPosition(t, "Python Backend Engineer", true)
	h.addPosition(t, "Data Analyst", true)
	h.script.set(func(s *script) {
		s.scores["Python Backend Engineer"] = 64
		s.failEval["Data Analyst"] = true
	})

	result := h.upload(t, englishResume)

	assert.Equal(t, "Python Backend Engineer", result.AssignedPosition)
	require.Len(t, result.Degraded, 1)
	assert.Contains(t, result.Degraded[0], "evaluation Data Analyst: evaluation failed")

	for _, e := range result.Evaluations {
		if e.PositionName == "Data Analyst" {
			assert.Equal(t, 0, e.Score)
			assert.Equal(t, models.GradeD, e.Grade)
			assert.True(t, e.Degraded)
		}
	}
}

func TestProcessDegradedIntentionIsFree(t *testing.T) {
	h := newHarness(t)
	h.addPosition(t, "Data Analyst", true)
	h.script.set(func(s *script) {
		s.scores["Data Analyst"] = 80
		s.intention = "I cannot answer that"
	})

	result := h.upload(t, englishResume)

	assert.False(t, result.IsLocked)
	assert.False(t, result.IsPending)
	assert.False(t, result.HasExplicitIntention)
	require.Len(t, result.Degraded, 1)
	assert.Contains(t, result.Degraded[0], "intention: intention analysis failed")
}

func TestPersistResumeWritesNothingOnFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pos := h.addPosition(t, "Data Analyst", true)

	eval := Evaluation{PositionID: pos.ID, PositionName: pos.Name, Score: 70, Grade: models.GradeC}
	rec := ResumeRecord{
		RunID:    "run-1",
		Filename: "cv.txt",
		Actor:    "tester",
		Profile:  models.CandidateProfile{Name: "Ada", NameFound: true},
		Decision: Decision{State: models.StateFree, Position: pos, Score: 70, Best: eval},
		// two rows for one position violate the candidate/position unique index
		Evaluations: []Evaluation{eval, eval},
	}

	candidate, err := h.coordinator.PersistResume(ctx, rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Nil(t, candidate)

	count, err := h.store.Candidates().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	matches, err := h.store.Matches().ListByPosition(ctx, pos.ID, repositories.MatchFilter{})
	require.NoError(t, err)
	assert.Empty(t, matches)

	audit, err := h.store.Audit().List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, audit)

	stored, err := h.store.Positions().FindByID(ctx, pos.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TotalCandidates)
	assert.Nil(t, stored.CountersRefreshedAt)
}
