package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-allocator/internal/models"
)

func TestCreatePosition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp, err := h.positions.Create(ctx, models.CreatePositionRequest{
		Name:        "  Golang Engineer ",
		Description: "Build services in Go",
		NiceToHave:  []string{"gRPC", " none "},
	}, "admin")
	require.NoError(t, err)

	assert.Equal(t, "Golang Engineer", resp.Name)
	assert.Equal(t, []string{"Go"}, resp.RequiredSkills)
	assert.Equal(t, []string{"gRPC"}, resp.NiceToHave)
	assert.False(t, resp.AnalysisDegraded)
	assert.Empty(t, resp.Reallocations)

	position, err := h.positions.Get(ctx, resp.PositionID)
	require.NoError(t, err)
	assert.True(t, position.IsActive)
	assert.Equal(t, "86+ strong fit", position.EvaluationRubric)

	audit, err := h.queries.Audit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, models.ActionCreatePosition, audit[0].Action)
	assert.Equal(t, "admin", audit[0].Actor)

	_, err = h.positions.Create(ctx, models.CreatePositionRequest{Name: "Golang Engineer", Description: "again"}, "admin")
	assert.ErrorIs(t, err, ErrPositionExists)

	_, err = h.positions.Create(ctx, models.CreatePositionRequest{Name: "   ", Description: "x"}, "admin")
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestCreatePositionFallsBackWhenAnalysisFails(t *testing.T) {
	h := newHarness(t)
	h.script.set(func(s *script) { s.analysis = "no json here" })

	resp, err := h.positions.Create(context.Background(), models.CreatePositionRequest{Name: "Data Analyst", Description: "Dashboards"}, "")
	require.NoError(t, err)
	assert.True(t, resp.AnalysisDegraded)
	assert.Equal(t, []string{DefaultRequirement}, resp.RequiredSkills)
	assert.Empty(t, resp.NiceToHave)

	position, err := h.positions.Get(context.Background(), resp.PositionID)
	require.NoError(t, err)
	assert.Equal(t, DefaultRubric, position.EvaluationRubric)
}

func TestSetActive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.addPosition(t, "Data Analyst", true)

	updated, err := h.positions.SetActive(ctx, p.ID, false, "admin")
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = h.positions.SetActive(ctx, p.ID, false, "admin")
	require.NoError(t, err)

	audit, err := h.queries.Audit(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, audit, 1)

	active, err := h.positions.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = h.positions.SetActive(ctx, 404, true, "")
	assert.ErrorIs(t, err, ErrPositionNotFound)
}

func TestSeed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	defs := []models.CreatePositionRequest{
		{Name: "Data Analyst", Description: "Dashboards"},
		{Name: "Golang Engineer", Description: "Services"},
	}

	created, err := h.positions.SeedIfEmpty(ctx, defs)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = h.positions.SeedIfEmpty(ctx, defs)
	require.NoError(t, err)
	assert.Zero(t, created)

	created, skipped, err := h.positions.Seed(ctx, append(defs, models.CreatePositionRequest{Name: "DevOps Engineer", Description: "CI"}), "")
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 2, skipped)
}

func TestSimilarWithoutIndex(t *testing.T) {
	h := newHarness(t)
	_, err := h.positions.Similar(context.Background(), "go developer", 3)
	assert.ErrorIs(t, err, ErrIndexDisabled)
}
