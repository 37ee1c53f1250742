package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/logger"
	"alfredoptarigan/talent-allocator/internal/metrics"
	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

// ResumeInput is one uploaded résumé. Path is read when Data is empty.
type ResumeInput struct {
	Filename string
	Data     []byte
	Path     string
	Actor    string
}

// ResumePipeline runs extracting, classifying, evaluating and deciding in order, then persists.
type ResumePipeline struct {
	store       repositories.Store
	documents   TextExtractor
	profiles    *ProfileExtractor
	classifier  *IntentionClassifier
	evaluator   *PositionEvaluator
	coordinator *PersistenceCoordinator
	log         *zap.Logger
}

func NewResumePipeline(
	store repositories.Store,
	documents TextExtractor,
	profiles *ProfileExtractor,
	classifier *IntentionClassifier,
	evaluator *PositionEvaluator,
	coordinator *PersistenceCoordinator,
	log *zap.Logger,
) *ResumePipeline {
	return &ResumePipeline{
		store:       store,
		documents:   documents,
		profiles:    profiles,
		classifier:  classifier,
		evaluator:   evaluator,
		coordinator: coordinator,
		log:         logger.WithFields(log),
	}
}

// Process returns a *PipelineError on every fatal abort. Degraded stages still yield a result.
func (p *ResumePipeline) Process(ctx context.Context, in ResumeInput) (*models.ResumeResult, error) {
	runID := uuid.NewString()
	log := p.log.With(zap.String(logger.FieldRunID, runID), zap.String("filename", in.Filename))

	result, err := p.run(ctx, runID, in, log)
	if err != nil {
		var perr *PipelineError
		stage := StageAborted
		if errors.As(err, &perr) {
			stage = perr.Stage
		}
		log.Error("résumé run aborted", zap.String(logger.FieldStage, string(stage)), zap.Error(err))
		metrics.RecordPipelineRun(metrics.OutcomeAborted)
		return nil, err
	}

	outcome := metrics.OutcomePersisted
	if len(result.Degraded) > 0 {
		outcome = metrics.OutcomeDegraded
	}
	metrics.RecordPipelineRun(outcome)

	log.Info("résumé run persisted",
		zap.String(logger.FieldStage, string(StagePersisted)),
		zap.Uint(logger.FieldCandidateID, result.CandidateID),
		zap.String("assigned_position", result.AssignedPosition),
		zap.Int("assigned_score", result.AssignedScore),
		zap.Bool("locked", result.IsLocked),
		zap.Bool("pending", result.IsPending),
		zap.Strings("degraded", result.Degraded))

	return result, nil
}

func (p *ResumePipeline) run(ctx context.Context, runID string, in ResumeInput, log *zap.Logger) (*models.ResumeResult, error) {
	var degraded []string

	// extracting
	done := p.enter(log, StageExtracting)
	positions, err := p.store.Positions().ListActive(ctx)
	if err != nil {
		return nil, abort(StageExtracting, fmt.Errorf("%w: %v", ErrPersistence, err))
	}
	if len(positions) == 0 {
		return nil, abort(StageExtracting, ErrNoActivePositions)
	}

	doc, err := p.extract(in)
	if err != nil {
		return nil, abort(StageExtracting, fmt.Errorf("%w: %v", ErrMalformedInput, err))
	}
	profile := p.profiles.Extract(doc.Text)
	log.Info("profile extracted",
		zap.String("name", profile.Name),
		zap.Int("pages", doc.PageCount),
		zap.Int("extraction_quality", profile.ExtractionQuality))
	done()

	// classifying
	done = p.enter(log, StageClassifying)
	intention := p.classifier.Classify(ctx, profile)
	if intention.Degraded {
		degraded = append(degraded, "intention: "+intention.Reasoning)
		log.Warn("intention classification degraded", zap.String("reason", intention.Reasoning))
	}
	done()

	// evaluating
	done = p.enter(log, StageEvaluating)
	evals := p.evaluator.EvaluateAll(ctx, profile, positions)
	for _, e := range evals {
		if e.Degraded {
			degraded = append(degraded, fmt.Sprintf("evaluation %s: %s", e.PositionName, e.Rationale))
		}
	}
	done()

	// deciding
	done = p.enter(log, StageDeciding)
	decision, err := Decide(intention, positions, evals)
	if err != nil {
		return nil, abort(StageDeciding, err)
	}

	candidate, err := p.coordinator.PersistResume(ctx, ResumeRecord{
		RunID:       runID,
		Filename:    in.Filename,
		Actor:       in.Actor,
		Profile:     profile,
		Intention:   intention,
		Decision:    decision,
		Evaluations: evals,
		Degraded:    degraded,
	})
	if err != nil {
		return nil, abort(StageDeciding, err)
	}
	done()

	return newResumeResult(runID, candidate, evals, degraded), nil
}

func (p *ResumePipeline) extract(in ResumeInput) (*DocumentText, error) {
	if len(in.Data) == 0 && in.Path != "" {
		return p.documents.ExtractFile(in.Path)
	}
	return p.documents.ExtractFromBytes(in.Filename, in.Data)
}

// enter logs the stage transition and returns a func that records the stage duration.
func (p *ResumePipeline) enter(log *zap.Logger, stage Stage) func() {
	log.Info("stage started", zap.String(logger.FieldStage, string(stage)))
	start := time.Now()
	return func() {
		metrics.ObserveStage(string(stage), time.Since(start))
	}
}

func newResumeResult(runID string, c *models.Candidate, evals []Evaluation, degraded []string) *models.ResumeResult {
	scores := make([]models.PositionScore, 0, len(evals))
	for _, e := range evals {
		scores = append(scores, models.PositionScore{
			PositionID:   e.PositionID,
			PositionName: e.PositionName,
			Score:        e.Score,
			Grade:        e.Grade,
			IsQualified:  models.IsQualified(e.Score),
			Degraded:     e.Degraded,
		})
	}

	result := &models.ResumeResult{
		RunID:                runID,
		CandidateID:          c.ID,
		Name:                 c.Name,
		AssignedPosition:     c.AssignedPositionName,
		AssignedScore:        c.AssignedScore,
		IsLocked:             c.IsLocked,
		IsPending:            c.IsPending,
		HasExplicitIntention: c.HasExplicitIntention,
		ExplicitPositionName: c.IntentionName(),
		ExtractionQuality:    c.ExtractionQuality,
		Evaluations:          scores,
		Degraded:             degraded,
	}
	if c.AssignedPositionID != nil {
		result.AssignedPositionID = *c.AssignedPositionID
	}
	return result
}
