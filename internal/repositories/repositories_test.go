package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
	"alfredoptarigan/talent-allocator/internal/testutil"
)

func newStore(t *testing.T) repositories.Store {
	t.Helper()
	return repositories.NewStore(testutil.NewDB(t))
}

func createPosition(t *testing.T, s repositories.Store, name string, active bool) *models.Position {
	t.Helper()
	p := &models.Position{Name: name, Description: name + " role", IsActive: active}
	require.NoError(t, s.Positions().Create(context.Background(), p))
	return p
}

func strPtr(s string) *string { return &s }

func TestPositionRepository(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	backend := createPosition(t, s, "Backend Engineer", true)
	createPosition(t, s, "Archived Role", false)
	frontend := createPosition(t, s, "Frontend Engineer", true)

	err := s.Positions().Create(ctx, &models.Position{Name: "Backend Engineer", IsActive: true})
	require.ErrorIs(t, err, repositories.ErrDuplicate)

	active, err := s.Positions().ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, backend.ID, active[0].ID)
	assert.Equal(t, frontend.ID, active[1].ID)

	found, err := s.Positions().FindByName(ctx, "Frontend Engineer")
	require.NoError(t, err)
	assert.Equal(t, frontend.ID, found.ID)

	_, err = s.Positions().FindByID(ctx, 999)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, s.Positions().SetActive(ctx, backend.ID, false))
	total, activeCount, err := s.Positions().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.EqualValues(t, 1, activeCount)

	require.ErrorIs(t, s.Positions().SetActive(ctx, 999, true), repositories.ErrNotFound)
}

func TestCandidateOptimisticUpdate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	c := &models.Candidate{Name: "Ada", HasExplicitIntention: true, ExplicitPositionName: strPtr("Data Engineer"), IsPending: true, UploadedAt: time.Now()}
	require.NoError(t, s.Candidates().Create(ctx, c))
	assert.Equal(t, 1, c.Version)

	first, err := s.Candidates().FindByID(ctx, c.ID)
	require.NoError(t, err)
	second, err := s.Candidates().FindByID(ctx, c.ID)
	require.NoError(t, err)

	first.IsPending = false
	first.IsLocked = true
	first.ReallocationCount++
	require.NoError(t, s.Candidates().UpdateAllocation(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.IsPending = false
	second.IsLocked = true
	err = s.Candidates().UpdateAllocation(ctx, second)
	require.ErrorIs(t, err, repositories.ErrConcurrentUpdate)

	stored, err := s.Candidates().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsLocked)
	assert.False(t, stored.IsPending)
	assert.Equal(t, 1, stored.ReallocationCount)
}

func TestCandidateUpdateRejectsBrokenInvariant(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	c := &models.Candidate{Name: "Bo", UploadedAt: time.Now()}
	require.NoError(t, s.Candidates().Create(ctx, c))

	c.IsPending = true
	require.Error(t, s.Candidates().UpdateAllocation(ctx, c))
}

func TestFindPendingIntentions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	candidates := []*models.Candidate{
		{Name: "pending", HasExplicitIntention: true, ExplicitPositionName: strPtr("Data Engineer"), IsPending: true},
		{Name: "locked", HasExplicitIntention: true, ExplicitPositionName: strPtr("Backend"), IsLocked: true},
		{Name: "free"},
		{Name: "pending too", HasExplicitIntention: true, ExplicitPositionName: strPtr("SRE"), IsPending: true},
	}
	for _, c := range candidates {
		c.UploadedAt = time.Now()
		require.NoError(t, s.Candidates().Create(ctx, c))
	}

	pending, err := s.Candidates().FindPendingIntentions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "pending", pending[0].Name)
	assert.Equal(t, "pending too", pending[1].Name)
}

func TestMatchRepository(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	p := createPosition(t, s, "Backend Engineer", true)
	c1 := &models.Candidate{Name: "one", UploadedAt: time.Now()}
	c2 := &models.Candidate{Name: "two", UploadedAt: time.Now()}
	require.NoError(t, s.Candidates().Create(ctx, c1))
	require.NoError(t, s.Candidates().Create(ctx, c2))

	now := time.Now()
	require.NoError(t, s.Matches().CreateBatch(ctx, []models.CandidatePositionMatch{
		{CandidateID: c1.ID, PositionID: p.ID, Score: 90, Grade: models.GradeA, IsQualified: true, Method: models.MethodInitial, EvaluatedAt: now},
		{CandidateID: c2.ID, PositionID: p.ID, Score: 50, Grade: models.GradeD, Method: models.MethodInitial, EvaluatedAt: now},
	}))

	err := s.Matches().Create(ctx, &models.CandidatePositionMatch{CandidateID: c1.ID, PositionID: p.ID, Score: 10, Grade: models.GradeD, Method: models.MethodBatch, EvaluatedAt: now})
	require.ErrorIs(t, err, repositories.ErrDuplicate)

	m, err := s.Matches().FindByPair(ctx, c2.ID, p.ID)
	require.NoError(t, err)
	m.Score = 77
	m.Grade = models.GradeB
	m.IsQualified = true
	m.Method = models.MethodManual
	require.NoError(t, s.Matches().Update(ctx, m))

	updated, err := s.Matches().FindByPair(ctx, c2.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, updated.ID)
	assert.Equal(t, 77, updated.Score)
	assert.Equal(t, models.MethodManual, updated.Method)

	stats, err := s.Matches().StatsForPosition(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Qualified)
	assert.InDelta(t, 83.5, stats.AverageScore, 1e-9)
	assert.Equal(t, 1, stats.GradeCounts[models.GradeA])
	assert.Equal(t, 1, stats.GradeCounts[models.GradeB])
	assert.Equal(t, 0, stats.GradeCounts[models.GradeD])

	minScore := 80
	top, err := s.Matches().ListByPosition(ctx, p.ID, repositories.MatchFilter{MinScore: &minScore})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, c1.ID, top[0].CandidateID)

	byGrade, err := s.Matches().ListByPosition(ctx, p.ID, repositories.MatchFilter{Grades: models.GradesAtLeast(models.GradeB)})
	require.NoError(t, err)
	assert.Len(t, byGrade, 2)

	byCandidate, err := s.Matches().ListByCandidate(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, byCandidate, 1)
	require.NotNil(t, byCandidate[0].Position)
	assert.Equal(t, "Backend Engineer", byCandidate[0].Position.Name)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repositories.Store) error {
		c := &models.Candidate{Name: "ghost", UploadedAt: time.Now()}
		if err := tx.Candidates().Create(ctx, c); err != nil {
			return err
		}
		if err := tx.Audit().Append(ctx, &models.AuditLog{Action: models.ActionResumeUploaded, CandidateID: &c.ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := s.Candidates().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	logs, err := s.Audit().List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestAuditDefaultsActor(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	entry := &models.AuditLog{Action: models.ActionCreatePosition, Details: map[string]interface{}{"name": "SRE"}}
	require.NoError(t, s.Audit().Append(ctx, entry))

	logs, err := s.Audit().List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.SystemActor, logs[0].Actor)
	assert.Equal(t, "SRE", logs[0].Details["name"])
}

func TestIntakeJobLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	job := &models.IntakeJob{OriginalFilename: "cv.pdf"}
	require.NoError(t, s.IntakeJobs().Create(ctx, job))

	queued, err := s.IntakeJobs().FindQueued(ctx, 10)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	require.NoError(t, s.IntakeJobs().Claim(ctx, job.ID))
	require.ErrorIs(t, s.IntakeJobs().Claim(ctx, job.ID), repositories.ErrConcurrentUpdate)

	require.NoError(t, s.IntakeJobs().MarkCompleted(ctx, job.ID, 7, []string{"evaluation:Backend"}))

	stored, err := s.IntakeJobs().FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	require.NotNil(t, stored.CandidateID)
	assert.EqualValues(t, 7, *stored.CandidateID)
	assert.Equal(t, []string{"evaluation:Backend"}, []string(stored.Degraded))
}
