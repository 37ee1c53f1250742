package models

type CreatePositionRequest struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Description    string   `json:"description" validate:"required,max=5000"`
	RequiredSkills []string `json:"required_skills" validate:"omitempty,dive,required,max=100"`
	NiceToHave     []string `json:"nice_to_have" validate:"omitempty,dive,required,max=100"`
}

type UpdatePositionStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type ReassignRequest struct {
	PositionID uint   `json:"position_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,max=500"`
}

type ReevaluateRequest struct {
	PositionID uint `json:"position_id" validate:"required"`
}

// CandidateSearch filters candidates. Score and grade filters apply to PositionName's match rows.
type CandidateSearch struct {
	Name         string `query:"q" validate:"omitempty,max=100"`
	PositionName string `query:"position" validate:"omitempty,max=100"`
	MinScore     *int   `query:"min_score" validate:"omitempty,min=0,max=100"`
	MinGrade     string `query:"min_grade" validate:"omitempty,oneof=A B C D a b c d"`
	Limit        int    `query:"limit" validate:"omitempty,min=1,max=200"`
}
