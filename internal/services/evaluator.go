package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/talent-allocator/internal/models"
)

const (
	evaluationTemperature = 0.3
	analysisTemperature   = 0.2

	DefaultRequirement = "relevant professional experience"
	DefaultRubric      = "60 meets the basic requirements, 76 exceeds them, 86 is a strong fit, 100 is a complete fit."
)

// Evaluation is the scored fit of one candidate for one position.
type Evaluation struct {
	PositionID   uint         `json:"position_id"`
	PositionName string       `json:"position_name"`
	Score        int          `json:"score"`
	Grade        models.Grade `json:"grade"`
	Rationale    string       `json:"rationale"`
	Matches      []string     `json:"matches"`
	Gaps         []string     `json:"gaps"`
	Potential    string       `json:"potential,omitempty"`
	Degraded     bool         `json:"degraded"`
}

// ToMatch builds the match row for this evaluation.
func (e Evaluation) ToMatch(candidateID uint, method models.EvaluationMethod, at time.Time) models.CandidatePositionMatch {
	return models.CandidatePositionMatch{
		CandidateID: candidateID,
		PositionID:  e.PositionID,
		Score:       e.Score,
		Grade:       e.Grade,
		IsQualified: models.IsQualified(e.Score),
		Rationale:   e.Rationale,
		Matches:     e.Matches,
		Gaps:        e.Gaps,
		Potential:   e.Potential,
		Degraded:    e.Degraded,
		Method:      method,
		EvaluatedAt: at,
	}
}

// Apply copies the evaluation onto an existing match row.
func (e Evaluation) Apply(match *models.CandidatePositionMatch, method models.EvaluationMethod, at time.Time) {
	match.Score = e.Score
	match.Grade = e.Grade
	match.IsQualified = models.IsQualified(e.Score)
	match.Rationale = e.Rationale
	match.Matches = e.Matches
	match.Gaps = e.Gaps
	match.Potential = e.Potential
	match.Degraded = e.Degraded
	match.Method = method
	match.EvaluatedAt = at
	match.UpdatedAt = at
}

// PositionAnalysis holds the requirement lists derived from a position description.
type PositionAnalysis struct {
	RequiredSkills   []string
	NiceToHave       []string
	EvaluationRubric string
	Degraded         bool
}

type evaluationResponse struct {
	OverallScore *float64 `json:"overall_score"`
	Rationale    string   `json:"rationale"`
	Reason       string   `json:"evaluation_reason"`
	Matches      []string `json:"matches"`
	Gaps         []string `json:"gaps"`
	Potential    string   `json:"potential"`
}

type analysisResponse struct {
	RequiredSkills   []string `json:"required_skills"`
	NiceToHave       []string `json:"nice_to_have"`
	EvaluationRubric string   `json:"evaluation_rubric"`
}

var errMissingScore = errors.New("response has no overall_score")

type PositionEvaluator struct {
	r           *reasoner
	concurrency int
}

func NewPositionEvaluator(gen TextGenerator, timeout time.Duration, concurrency int, log *zap.Logger) *PositionEvaluator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PositionEvaluator{r: newReasoner(gen, timeout, log), concurrency: concurrency}
}

// Evaluate never fails. The grade always comes from the score, never from the model.
func (e *PositionEvaluator) Evaluate(ctx context.Context, profile models.CandidateProfile, position models.Position) Evaluation {
	var resp evaluationResponse
	err := e.r.ask(ctx, e.r.prompts.BuildEvaluationPrompt(profile, position), evaluationTemperature, &resp)
	if err == nil && resp.OverallScore == nil {
		err = errMissingScore
	}
	if err != nil {
		e.r.log.Warn("position evaluation degraded",
			zap.Uint("position_id", position.ID),
			zap.Error(err))
		return failedEvaluation(position, err)
	}

	score := models.ClampScore(int(math.Round(*resp.OverallScore)))
	rationale := strings.TrimSpace(resp.Rationale)
	if rationale == "" {
		rationale = strings.TrimSpace(resp.Reason)
	}

	return Evaluation{
		PositionID:   position.ID,
		PositionName: position.Name,
		Score:        score,
		Grade:        models.GradeForScore(score),
		Rationale:    rationale,
		Matches:      cleanList(resp.Matches),
		Gaps:         cleanList(resp.Gaps),
		Potential:    cleanOptional(resp.Potential),
	}
}

func failedEvaluation(position models.Position, err error) Evaluation {
	return Evaluation{
		PositionID:   position.ID,
		PositionName: position.Name,
		Score:        0,
		Grade:        models.GradeForScore(0),
		Rationale:    "evaluation failed: " + err.Error(),
		Matches:      []string{},
		Gaps:         []string{},
		Degraded:     true,
	}
}

// EvaluateAll scores every position with bounded parallelism. Results keep the order of positions.
func (e *PositionEvaluator) EvaluateAll(ctx context.Context, profile models.CandidateProfile, positions []models.Position) []Evaluation {
	results := make([]Evaluation, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, position := range positions {
		g.Go(func() error {
			results[i] = e.Evaluate(gctx, profile, position)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// AnalyzePosition never fails. Caller supplied lists always win over derived ones.
func (e *PositionEvaluator) AnalyzePosition(ctx context.Context, name, description string, required, niceToHave []string) PositionAnalysis {
	var resp analysisResponse
	err := e.r.ask(ctx, e.r.prompts.BuildPositionAnalysisPrompt(name, description), analysisTemperature, &resp)

	analysis := PositionAnalysis{
		RequiredSkills:   cleanList(resp.RequiredSkills),
		NiceToHave:       cleanList(resp.NiceToHave),
		EvaluationRubric: strings.TrimSpace(resp.EvaluationRubric),
	}
	if err != nil {
		e.r.log.Warn("position analysis degraded", zap.String("position", name), zap.Error(err))
		analysis = PositionAnalysis{Degraded: true}
	}

	if given := cleanList(required); len(given) > 0 {
		analysis.RequiredSkills = given
	}
	if given := cleanList(niceToHave); len(given) > 0 {
		analysis.NiceToHave = given
	}

	if len(analysis.RequiredSkills) == 0 {
		analysis.RequiredSkills = []string{DefaultRequirement}
	}
	if analysis.NiceToHave == nil {
		analysis.NiceToHave = []string{}
	}
	if analysis.EvaluationRubric == "" {
		analysis.EvaluationRubric = DefaultRubric
	}

	return analysis
}
