package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// IntakeJob tracks a résumé uploaded for background processing.
type IntakeJob struct {
	ID               uuid.UUID                   `gorm:"type:varchar(36);primaryKey" json:"id"`
	OriginalFilename string                      `gorm:"type:varchar(255)" json:"original_filename"`
	StoredFilename   string                      `gorm:"type:varchar(255)" json:"stored_filename"`
	FilePath         string                      `gorm:"type:text" json:"-"`
	Actor            string                      `gorm:"type:varchar(100)" json:"actor"`
	Status           JobStatus                   `gorm:"type:varchar(16);not null;index" json:"status"`
	Attempts         int                         `gorm:"not null" json:"attempts"`
	CandidateID      *uint                       `json:"candidate_id,omitempty"`
	Degraded         datatypes.JSONSlice[string] `json:"degraded,omitempty"`
	ErrorKind        string                      `gorm:"type:varchar(16)" json:"error_kind,omitempty"`
	ErrorMessage     *string                     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func (IntakeJob) TableName() string {
	return "intake_jobs"
}
