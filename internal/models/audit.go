package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	ActionResumeUploaded       AuditAction = "RESUME_UPLOADED"
	ActionCreatePosition       AuditAction = "CREATE_POSITION"
	ActionReallocateIntention  AuditAction = "REALLOCATE_EXPLICIT_INTENTION"
	ActionUpdateCandidatePos   AuditAction = "UPDATE_CANDIDATE_POSITION"
	ActionReevaluateCandidate  AuditAction = "REEVALUATE_CANDIDATE"
	ActionUpdatePositionStatus AuditAction = "UPDATE_POSITION_STATUS"
)

// SystemActor is recorded when no caller identity is known.
const SystemActor = "system"

type AuditLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Actor       string            `gorm:"type:varchar(100);not null" json:"actor"`
	Action      AuditAction       `gorm:"type:varchar(64);not null;index" json:"action"`
	CandidateID *uint             `gorm:"index" json:"candidate_id,omitempty"`
	PositionID  *uint             `gorm:"index" json:"position_id,omitempty"`
	RunID       string            `gorm:"type:varchar(36);index" json:"run_id,omitempty"`
	Details     datatypes.JSONMap `json:"details"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
