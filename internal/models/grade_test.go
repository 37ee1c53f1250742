package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeForScore(t *testing.T) {
	tests := []struct {
		score int
		want  Grade
	}{
		{100, GradeA},
		{86, GradeA},
		{85, GradeB},
		{76, GradeB},
		{75, GradeC},
		{74, GradeC},
		{60, GradeC},
		{59, GradeD},
		{0, GradeD},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeForScore(tt.score), "score %d", tt.score)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 100, ClampScore(140))
	assert.Equal(t, 42, ClampScore(42))
}

func TestGradesAtLeast(t *testing.T) {
	assert.Equal(t, []Grade{GradeA, GradeB}, GradesAtLeast(GradeB))
	assert.Len(t, GradesAtLeast(GradeD), 4)

	g, ok := ParseGrade("c")
	assert.True(t, ok)
	assert.Equal(t, GradeC, g)

	_, ok = ParseGrade("E")
	assert.False(t, ok)
}

func TestCandidateInvariants(t *testing.T) {
	tests := []struct {
		name    string
		c       Candidate
		state   AllocationState
		wantErr bool
	}{
		{name: "free", c: Candidate{}, state: StateFree},
		{name: "locked", c: Candidate{IsLocked: true, HasExplicitIntention: true}, state: StateLocked},
		{name: "pending", c: Candidate{IsPending: true, HasExplicitIntention: true}, state: StatePending},
		{name: "both", c: Candidate{IsPending: true, IsLocked: true, HasExplicitIntention: true}, state: StateLocked, wantErr: true},
		{name: "pending without intention", c: Candidate{IsPending: true}, state: StatePending, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.state, tt.c.State())
			if tt.wantErr {
				assert.Error(t, tt.c.CheckInvariants())
			} else {
				assert.NoError(t, tt.c.CheckInvariants())
			}
		})
	}
}
