package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/logger"
	"alfredoptarigan/talent-allocator/internal/metrics"
	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

// DefaultMatchThreshold is the confidence a match must exceed to be applied.
const DefaultMatchThreshold = 0.8

// ReallocationService resolves pending candidates when the position they asked for appears.
// Candidates without an explicit intention, and locked candidates, are never considered.
type ReallocationService struct {
	coordinator *PersistenceCoordinator
	classifier  *IntentionClassifier
	evaluator   *PositionEvaluator
	threshold   float64
	log         *zap.Logger
}

func NewReallocationService(
	coordinator *PersistenceCoordinator,
	classifier *IntentionClassifier,
	evaluator *PositionEvaluator,
	threshold float64,
	log *zap.Logger,
) *ReallocationService {
	return &ReallocationService{
		coordinator: coordinator,
		classifier:  classifier,
		evaluator:   evaluator,
		threshold:   threshold,
		log:         logger.WithFields(log),
	}
}

// ReallocateForPosition sweeps pending candidates against a newly created position.
// Reasoning calls run outside any transaction; each accepted candidate is written in its own.
func (s *ReallocationService) ReallocateForPosition(ctx context.Context, position models.Position, actor string) ([]models.ReallocationChange, error) {
	changes := []models.ReallocationChange{}
	if !position.IsActive {
		return changes, nil
	}

	runID := uuid.NewString()
	log := s.log.With(zap.String(logger.FieldRunID, runID), zap.Uint(logger.FieldPositionID, position.ID))

	pending, err := s.coordinator.PendingCandidates(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("reallocation sweep started", zap.Int("pending", len(pending)))

	for i := range pending {
		if err := ctx.Err(); err != nil {
			return changes, err
		}

		candidate := &pending[i]
		if !candidate.IsPending || candidate.IsLocked || !candidate.HasExplicitIntention || candidate.IntentionName() == "" {
			continue
		}

		clog := log.With(zap.Uint(logger.FieldCandidateID, candidate.ID), zap.String("intention", candidate.IntentionName()))

		match := s.classifier.MatchIntention(ctx, candidate.IntentionName(), position)
		switch {
		case match.Degraded:
			metrics.RecordReallocation(metrics.DecisionFailed)
			clog.Warn("intention match degraded, candidate left pending", zap.String("reason", match.Reasoning))
			continue
		case !match.Match:
			metrics.RecordReallocation(metrics.DecisionNoMatch)
			clog.Info("position does not match intention", zap.Float64("confidence", match.Confidence))
			continue
		case match.Confidence <= s.threshold:
			metrics.RecordReallocation(metrics.DecisionRejected)
			clog.Info("match confidence below threshold, no change",
				zap.Float64("confidence", match.Confidence),
				zap.Float64("threshold", s.threshold))
			continue
		}

		eval := s.evaluator.Evaluate(ctx, candidate.Profile(), position)

		change, err := s.coordinator.ApplyReallocation(ctx, ReallocationRecord{
			RunID:       runID,
			Actor:       actor,
			CandidateID: candidate.ID,
			Version:     candidate.Version,
			Position:    position,
			Evaluation:  eval,
			Match:       match,
		})
		if err != nil {
			if errors.Is(err, repositories.ErrConcurrentUpdate) {
				metrics.RecordReallocation(metrics.DecisionSkipped)
				clog.Info("candidate changed concurrently, skipped", zap.Error(err))
				continue
			}
			metrics.RecordReallocation(metrics.DecisionFailed)
			clog.Error("failed to apply reallocation", zap.Error(err))
			continue
		}

		metrics.RecordReallocation(metrics.DecisionAccepted)
		clog.Info("candidate reallocated",
			zap.String("old_position", change.OldPosition),
			zap.Int("old_score", change.OldScore),
			zap.Int("new_score", change.NewScore),
			zap.Float64("confidence", match.Confidence))
		changes = append(changes, *change)
	}

	log.Info("reallocation sweep finished", zap.Int("changes", len(changes)))
	return changes, nil
}
