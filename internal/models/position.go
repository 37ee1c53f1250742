package models

import (
	"time"

	"gorm.io/datatypes"
)

type Position struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	Name             string                      `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description      string                      `gorm:"type:text" json:"description"`
	RequiredSkills   datatypes.JSONSlice[string] `json:"required_skills"`
	NiceToHave       datatypes.JSONSlice[string] `json:"nice_to_have"`
	EvaluationRubric string                      `gorm:"type:text" json:"evaluation_rubric"`
	IsActive         bool                        `gorm:"not null;index" json:"is_active"`

	// Denormalized counters. PositionStats computed from match rows is authoritative.
	TotalCandidates     int        `gorm:"not null" json:"total_candidates"`
	QualifiedCandidates int        `gorm:"not null" json:"qualified_candidates"`
	GradeACount         int        `gorm:"column:grade_a_count;not null" json:"grade_a_count"`
	GradeBCount         int        `gorm:"column:grade_b_count;not null" json:"grade_b_count"`
	GradeCCount         int        `gorm:"column:grade_c_count;not null" json:"grade_c_count"`
	GradeDCount         int        `gorm:"column:grade_d_count;not null" json:"grade_d_count"`
	CountersRefreshedAt *time.Time `json:"counters_refreshed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// PositionStats is recomputed from match rows on demand.
type PositionStats struct {
	PositionID   uint          `json:"position_id"`
	PositionName string        `json:"position_name"`
	Total        int           `json:"total_candidates"`
	Qualified    int           `json:"qualified_candidates"`
	AverageScore float64       `json:"average_score"`
	GradeCounts  map[Grade]int `json:"grade_distribution"`
}

// QualificationRate is the qualified share in percent.
func (s PositionStats) QualificationRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Qualified) * 100 / float64(s.Total)
}
