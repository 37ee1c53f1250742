package models

import (
	"time"

	"gorm.io/datatypes"
)

type EvaluationMethod string

const (
	MethodInitial EvaluationMethod = "INITIAL"
	MethodBatch   EvaluationMethod = "BATCH"
	MethodManual  EvaluationMethod = "MANUAL"
)

// CandidatePositionMatch holds the evaluation of one candidate against one position.
type CandidatePositionMatch struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	CandidateID uint                        `gorm:"not null;uniqueIndex:idx_candidate_position,priority:1" json:"candidate_id"`
	PositionID  uint                        `gorm:"not null;uniqueIndex:idx_candidate_position,priority:2;index" json:"position_id"`
	Score       int                         `gorm:"not null" json:"score"`
	Grade       Grade                       `gorm:"type:varchar(1);not null;index" json:"grade"`
	IsQualified bool                        `gorm:"not null;index" json:"is_qualified"`
	Rationale   string                      `gorm:"type:text" json:"rationale"`
	Matches     datatypes.JSONSlice[string] `json:"matches"`
	Gaps        datatypes.JSONSlice[string] `json:"gaps"`
	Potential   string                      `gorm:"type:text" json:"potential,omitempty"`
	Degraded    bool                        `gorm:"not null" json:"degraded"`
	Method      EvaluationMethod            `gorm:"type:varchar(16);not null" json:"method"`
	EvaluatedAt time.Time                   `json:"evaluated_at"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	Position *Position `gorm:"foreignKey:PositionID" json:"position,omitempty"`
}

func (CandidatePositionMatch) TableName() string {
	return "candidate_position_matches"
}
