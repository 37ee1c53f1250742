package models

// PositionScore is one evaluated position in a résumé result.
type PositionScore struct {
	PositionID   uint   `json:"position_id"`
	PositionName string `json:"position_name"`
	Score        int    `json:"score"`
	Grade        Grade  `json:"grade"`
	IsQualified  bool   `json:"is_qualified"`
	Degraded     bool   `json:"degraded"`
}

// ResumeResult is returned to the caller once a résumé run has persisted.
type ResumeResult struct {
	RunID                string          `json:"run_id"`
	CandidateID          uint            `json:"candidate_id"`
	Name                 string          `json:"name"`
	AssignedPositionID   uint            `json:"assigned_position_id"`
	AssignedPosition     string          `json:"assigned_position"`
	AssignedScore        int             `json:"assigned_score"`
	IsLocked             bool            `json:"is_locked"`
	IsPending            bool            `json:"is_pending"`
	HasExplicitIntention bool            `json:"has_explicit_intention"`
	ExplicitPositionName string          `json:"explicit_position_name,omitempty"`
	ExtractionQuality    int             `json:"extraction_quality"`
	Evaluations          []PositionScore `json:"evaluations"`
	Degraded             []string        `json:"degraded,omitempty"`
}

// ReallocationChange describes one candidate moved by a reallocation sweep.
type ReallocationChange struct {
	CandidateID      uint    `json:"candidate_id"`
	CandidateName    string  `json:"candidate_name"`
	OldPosition      string  `json:"old_position"`
	NewPosition      string  `json:"new_position"`
	OldScore         int     `json:"old_score"`
	NewScore         int     `json:"new_score"`
	ScoreImprovement int     `json:"score_improvement"`
	Confidence       float64 `json:"confidence"`
	Reason           string  `json:"reason"`
}

type CreatePositionResponse struct {
	PositionID       uint                 `json:"position_id"`
	Name             string               `json:"name"`
	RequiredSkills   []string             `json:"required_skills"`
	NiceToHave       []string             `json:"nice_to_have"`
	AnalysisDegraded bool                 `json:"analysis_degraded"`
	Reallocations    []ReallocationChange `json:"reallocations"`
}

type CandidateDetail struct {
	Candidate *Candidate               `json:"candidate"`
	Matches   []CandidatePositionMatch `json:"matches"`
}

// RankedCandidate is a candidate as seen from one position.
type RankedCandidate struct {
	CandidateID uint   `json:"candidate_id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Score       int    `json:"score"`
	Grade       Grade  `json:"grade"`
	IsQualified bool   `json:"is_qualified"`
	IsPrimary   bool   `json:"is_primary"`
	Rationale   string `json:"rationale"`
}

type CandidatePage struct {
	Total int64       `json:"total"`
	Skip  int         `json:"skip"`
	Limit int         `json:"limit"`
	Items []Candidate `json:"items"`
}

type JobResponse struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Result       *ResumeResult `json:"result,omitempty"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
}

type UploadAcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	PositionCount   int64  `json:"position_count"`
	ActivePositions int64  `json:"active_positions"`
	CandidateCount  int64  `json:"candidate_count"`
	SystemReady     bool   `json:"system_ready"`
}

type SimilarPosition struct {
	PositionID uint    `json:"position_id"`
	Name       string  `json:"name"`
	Score      float32 `json:"score"`
}
