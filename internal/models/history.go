package models

import "time"

type TriggerKind string

const (
	TriggerNewPosition TriggerKind = "NEW_POSITION"
	TriggerManual      TriggerKind = "MANUAL"
	TriggerAutoRerank  TriggerKind = "AUTO_RERANK"
)

// AllocationHistory is append-only. Rows are never updated or deleted.
type AllocationHistory struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	CandidateID     uint        `gorm:"not null;index" json:"candidate_id"`
	OldPositionID   *uint       `json:"old_position_id,omitempty"`
	OldPositionName string      `gorm:"type:varchar(100)" json:"old_position"`
	OldScore        int         `json:"old_score"`
	NewPositionID   *uint       `json:"new_position_id,omitempty"`
	NewPositionName string      `gorm:"type:varchar(100)" json:"new_position"`
	NewScore        int         `json:"new_score"`
	Trigger         TriggerKind `gorm:"type:varchar(20);not null;index" json:"trigger"`
	Reason          string      `gorm:"type:text" json:"reason"`
	Actor           string      `gorm:"type:varchar(100)" json:"actor"`
	RunID           string      `gorm:"type:varchar(36);index" json:"run_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

func (AllocationHistory) TableName() string {
	return "allocation_history"
}
