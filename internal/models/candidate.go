package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Major  string `json:"major,omitempty"`
}

// CandidateProfile is the structured view of a résumé produced by the profile extractor.
type CandidateProfile struct {
	Name              string      `json:"name"`
	NameFound         bool        `json:"-"`
	Gender            string      `json:"gender,omitempty"`
	BirthDate         string      `json:"birth_date,omitempty"`
	Age               *int        `json:"age,omitempty"`
	Phone             string      `json:"phone,omitempty"`
	Email             string      `json:"email,omitempty"`
	Skills            []Skill     `json:"skills"`
	Education         []Education `json:"education"`
	WorkExperience    []string    `json:"work_experience"`
	Objective         string      `json:"objective,omitempty"`
	SelfEvaluation    string      `json:"self_evaluation,omitempty"`
	ExtractionQuality int         `json:"extraction_quality"`
}

// SkillNames flattens the skill list for prompts and reports.
func (p CandidateProfile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}

type AllocationState string

const (
	StateLocked  AllocationState = "locked"
	StatePending AllocationState = "pending"
	StateFree    AllocationState = "free"
)

type Candidate struct {
	ID                uint                           `gorm:"primaryKey" json:"id"`
	Name              string                         `gorm:"type:varchar(100);not null;index" json:"name"`
	Gender            string                         `gorm:"type:varchar(16)" json:"gender,omitempty"`
	BirthDate         string                         `gorm:"type:varchar(10)" json:"birth_date,omitempty"`
	Age               *int                           `json:"age,omitempty"`
	Phone             string                         `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Email             string                         `gorm:"type:varchar(255)" json:"email,omitempty"`
	Skills            datatypes.JSONSlice[Skill]     `json:"skills"`
	Education         datatypes.JSONSlice[Education] `json:"education"`
	WorkExperience    datatypes.JSONSlice[string]    `json:"work_experience"`
	Objective         string                         `gorm:"type:text" json:"objective,omitempty"`
	SelfEvaluation    string                         `gorm:"type:text" json:"self_evaluation,omitempty"`
	ExtractionQuality int                            `gorm:"not null" json:"extraction_quality"`
	SourceFilename    string                         `gorm:"type:varchar(255)" json:"source_filename"`

	HasExplicitIntention bool    `gorm:"not null" json:"has_explicit_intention"`
	ExplicitPositionName *string `gorm:"type:varchar(100)" json:"explicit_position_name,omitempty"`
	IntentionSource      string  `gorm:"type:text" json:"intention_source,omitempty"`
	IntentionReasoning   string  `gorm:"type:text" json:"intention_reasoning,omitempty"`

	AssignedPositionID   *uint      `gorm:"index" json:"assigned_position_id,omitempty"`
	AssignedPositionName string     `gorm:"type:varchar(100)" json:"assigned_position"`
	AssignedScore        int        `gorm:"not null" json:"assigned_score"`
	IsLocked             bool       `gorm:"not null;index" json:"is_locked"`
	IsPending            bool       `gorm:"not null;index" json:"is_pending"`
	ReallocationCount    int        `gorm:"not null" json:"reallocation_count"`
	Version              int        `gorm:"not null" json:"version"`
	UploadedAt           time.Time  `json:"uploaded_at"`
	LastReallocatedAt    *time.Time `json:"last_reallocated_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}

func (c *Candidate) State() AllocationState {
	switch {
	case c.IsLocked:
		return StateLocked
	case c.IsPending:
		return StatePending
	default:
		return StateFree
	}
}

// IntentionName returns the stated target position or "".
func (c *Candidate) IntentionName() string {
	if c.ExplicitPositionName == nil {
		return ""
	}
	return *c.ExplicitPositionName
}

// CheckInvariants reports a broken lock/pending combination.
func (c *Candidate) CheckInvariants() error {
	if c.IsLocked && c.IsPending {
		return fmt.Errorf("candidate %d is both locked and pending", c.ID)
	}
	if c.IsPending && !c.HasExplicitIntention {
		return fmt.Errorf("candidate %d is pending without an explicit intention", c.ID)
	}
	return nil
}

// Profile rebuilds the extracted profile from the stored columns.
func (c *Candidate) Profile() CandidateProfile {
	return CandidateProfile{
		Name:              c.Name,
		NameFound:         true,
		Gender:            c.Gender,
		BirthDate:         c.BirthDate,
		Age:               c.Age,
		Phone:             c.Phone,
		Email:             c.Email,
		Skills:            c.Skills,
		Education:         c.Education,
		WorkExperience:    c.WorkExperience,
		Objective:         c.Objective,
		SelfEvaluation:    c.SelfEvaluation,
		ExtractionQuality: c.ExtractionQuality,
	}
}

// CandidateSnapshot keeps the profile as it was at a point in the candidate's life.
type CandidateSnapshot struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CandidateID uint           `gorm:"not null;index" json:"candidate_id"`
	Version     int            `gorm:"not null" json:"version"`
	Event       string         `gorm:"type:varchar(255)" json:"event"`
	Profile     datatypes.JSON `json:"profile"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (CandidateSnapshot) TableName() string {
	return "candidate_snapshots"
}
