package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/talent-allocator/internal/logger"
	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

// AssignmentService covers the manual operations on a candidate's allocation.
type AssignmentService struct {
	store     repositories.Store
	evaluator *PositionEvaluator
	log       *zap.Logger
	now       func() time.Time
}

func NewAssignmentService(store repositories.Store, evaluator *PositionEvaluator, log *zap.Logger) *AssignmentService {
	return &AssignmentService{store: store, evaluator: evaluator, log: logger.WithFields(log), now: time.Now}
}

// Reassign moves a candidate onto a position they were already evaluated against and locks them there.
func (s *AssignmentService) Reassign(ctx context.Context, candidateID, positionID uint, reason, actor string) (*models.Candidate, error) {
	reason = strings.TrimSpace(reason)
	now := s.now()
	var updated *models.Candidate

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		candidate, err := tx.Candidates().FindByID(ctx, candidateID)
		if err != nil {
			return notFoundOr(err, ErrCandidateNotFound)
		}

		position, err := tx.Positions().FindByID(ctx, positionID)
		if err != nil {
			return notFoundOr(err, ErrPositionNotFound)
		}

		match, err := tx.Matches().FindByPair(ctx, candidateID, positionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: candidate %d position %d", ErrNoMatchRecord, candidateID, positionID)
			}
			return err
		}

		oldID := candidate.AssignedPositionID
		oldName := candidate.AssignedPositionName
		oldScore := candidate.AssignedScore

		candidate.AssignedPositionID = &position.ID
		candidate.AssignedPositionName = position.Name
		candidate.AssignedScore = match.Score
		candidate.IsLocked = true
		candidate.IsPending = false
		candidate.ReallocationCount++
		candidate.LastReallocatedAt = &now

		if err := tx.Candidates().UpdateAllocation(ctx, candidate); err != nil {
			return err
		}

		if err := tx.History().Append(ctx, &models.AllocationHistory{
			CandidateID:     candidate.ID,
			OldPositionID:   oldID,
			OldPositionName: oldName,
			OldScore:        oldScore,
			NewPositionID:   &position.ID,
			NewPositionName: position.Name,
			NewScore:        match.Score,
			Trigger:         models.TriggerManual,
			Reason:          reason,
			Actor:           actorOrSystem(actor),
		}); err != nil {
			return err
		}

		if err := tx.Audit().Append(ctx, &models.AuditLog{
			Actor:       actor,
			Action:      models.ActionUpdateCandidatePos,
			CandidateID: &candidate.ID,
			PositionID:  &position.ID,
			Details: datatypes.JSONMap{
				"old_position": oldName,
				"new_position": position.Name,
				"old_score":    oldScore,
				"new_score":    match.Score,
				"reason":       reason,
			},
		}); err != nil {
			return err
		}

		updated = candidate
		return nil
	})
	if err != nil {
		return nil, serviceError(err)
	}

	s.log.Info("candidate reassigned",
		zap.Uint(logger.FieldCandidateID, candidateID),
		zap.Uint(logger.FieldPositionID, positionID),
		zap.String("actor", actorOrSystem(actor)))

	return updated, nil
}

// Reevaluate rescores an existing match row in place. The candidate's assignment is not touched.
func (s *AssignmentService) Reevaluate(ctx context.Context, candidateID, positionID uint, actor string) (*models.CandidatePositionMatch, error) {
	candidate, err := s.store.Candidates().FindByID(ctx, candidateID)
	if err != nil {
		return nil, notFoundOr(err, ErrCandidateNotFound)
	}

	position, err := s.store.Positions().FindByID(ctx, positionID)
	if err != nil {
		return nil, notFoundOr(err, ErrPositionNotFound)
	}

	previous, err := s.store.Matches().FindByPair(ctx, candidateID, positionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: candidate %d position %d", ErrNoMatchRecord, candidateID, positionID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	oldScore := previous.Score

	eval := s.evaluator.Evaluate(ctx, candidate.Profile(), *position)
	now := s.now()
	var match *models.CandidatePositionMatch

	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Matches().FindByPair(ctx, candidateID, positionID)
		if err != nil {
			return err
		}

		eval.Apply(current, models.MethodManual, now)
		if err := tx.Matches().Update(ctx, current); err != nil {
			return err
		}

		if err := tx.Audit().Append(ctx, &models.AuditLog{
			Actor:       actor,
			Action:      models.ActionReevaluateCandidate,
			CandidateID: &candidateID,
			PositionID:  &positionID,
			Details: datatypes.JSONMap{
				"position":          position.Name,
				"old_score":         oldScore,
				"new_score":         eval.Score,
				"grade":             string(eval.Grade),
				"evaluation_failed": eval.Degraded,
			},
		}); err != nil {
			return err
		}

		match = current
		return refreshCounters(ctx, tx, positionID)
	})
	if err != nil {
		return nil, serviceError(err)
	}

	return match, nil
}

// serviceError keeps service sentinels as they are and reports everything else as a database error.
func serviceError(err error) error {
	for _, sentinel := range []error{ErrCandidateNotFound, ErrPositionNotFound, ErrNoMatchRecord, repositories.ErrConcurrentUpdate} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
