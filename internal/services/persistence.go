package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/talent-allocator/internal/logger"
	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

const newPositionReason = "intention position has been created"

// ResumeRecord is everything a finished résumé run writes.
type ResumeRecord struct {
	RunID       string
	Filename    string
	Actor       string
	Profile     models.CandidateProfile
	Intention   Intention
	Decision    Decision
	Evaluations []Evaluation
	Degraded    []string
}

// ReallocationRecord is one accepted reallocation for a pending candidate.
type ReallocationRecord struct {
	RunID       string
	Actor       string
	CandidateID uint
	// Version is the candidate version the match and evaluation were computed against.
	Version    int
	Position   models.Position
	Evaluation Evaluation
	Match      IntentionMatch
}

// PersistenceCoordinator owns every multi-row write. Each method is one transaction.
type PersistenceCoordinator struct {
	store repositories.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewPersistenceCoordinator(store repositories.Store, log *zap.Logger) *PersistenceCoordinator {
	return &PersistenceCoordinator{store: store, log: logger.WithFields(log), now: time.Now}
}

// PendingCandidates lists the candidates eligible for reallocation.
func (p *PersistenceCoordinator) PendingCandidates(ctx context.Context) ([]models.Candidate, error) {
	candidates, err := p.store.Candidates().FindPendingIntentions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return candidates, nil
}

// PersistResume writes the candidate, its initial match rows, a snapshot and an audit row, or nothing.
func (p *PersistenceCoordinator) PersistResume(ctx context.Context, rec ResumeRecord) (*models.Candidate, error) {
	now := p.now()
	candidate := newCandidate(rec, now)

	err := p.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := tx.Candidates().Create(ctx, candidate); err != nil {
			return err
		}

		matches := make([]models.CandidatePositionMatch, 0, len(rec.Evaluations))
		for _, e := range rec.Evaluations {
			matches = append(matches, e.ToMatch(candidate.ID, models.MethodInitial, now))
		}
		if err := tx.Matches().CreateBatch(ctx, matches); err != nil {
			return err
		}

		profile, err := json.Marshal(rec.Profile)
		if err != nil {
			return fmt.Errorf("failed to encode profile snapshot: %w", err)
		}
		if err := tx.Snapshots().Create(ctx, &models.CandidateSnapshot{
			CandidateID: candidate.ID,
			Version:     candidate.Version,
			Event:       "initial upload: " + rec.Filename,
			Profile:     datatypes.JSON(profile),
		}); err != nil {
			return err
		}

		if err := tx.Audit().Append(ctx, &models.AuditLog{
			Actor:       rec.Actor,
			Action:      models.ActionResumeUploaded,
			CandidateID: &candidate.ID,
			PositionID:  candidate.AssignedPositionID,
			RunID:       rec.RunID,
			Details: datatypes.JSONMap{
				"filename":           rec.Filename,
				"assigned_position":  candidate.AssignedPositionName,
				"assigned_score":     candidate.AssignedScore,
				"state":              string(candidate.State()),
				"positions_scored":   len(matches),
				"extraction_quality": candidate.ExtractionQuality,
				"degraded":           rec.Degraded,
			},
		}); err != nil {
			return err
		}

		ids := make([]uint, 0, len(rec.Evaluations))
		for _, e := range rec.Evaluations {
			ids = append(ids, e.PositionID)
		}
		return refreshCounters(ctx, tx, ids...)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return candidate, nil
}

func newCandidate(rec ResumeRecord, now time.Time) *models.Candidate {
	profile := rec.Profile
	decision := rec.Decision
	positionID := decision.Position.ID

	candidate := &models.Candidate{
		Name:                 profile.Name,
		Gender:               profile.Gender,
		BirthDate:            profile.BirthDate,
		Age:                  profile.Age,
		Phone:                profile.Phone,
		Email:                profile.Email,
		Skills:               profile.Skills,
		Education:            profile.Education,
		WorkExperience:       profile.WorkExperience,
		Objective:            profile.Objective,
		SelfEvaluation:       profile.SelfEvaluation,
		ExtractionQuality:    profile.ExtractionQuality,
		SourceFilename:       rec.Filename,
		HasExplicitIntention: rec.Intention.HasExplicit,
		IntentionSource:      rec.Intention.SourceExcerpt,
		IntentionReasoning:   rec.Intention.Reasoning,
		AssignedPositionID:   &positionID,
		AssignedPositionName: decision.Position.Name,
		AssignedScore:        decision.Score,
		IsLocked:             decision.IsLocked(),
		IsPending:            decision.IsPending(),
		UploadedAt:           now,
	}

	if rec.Intention.HasExplicit {
		name := rec.Intention.PositionName
		candidate.ExplicitPositionName = &name
	}

	return candidate
}

// ApplyReallocation locks a pending candidate onto a newly created position. It returns
// repositories.ErrConcurrentUpdate when the candidate changed since rec.Version was read.
func (p *PersistenceCoordinator) ApplyReallocation(ctx context.Context, rec ReallocationRecord) (*models.ReallocationChange, error) {
	now := p.now()
	var change *models.ReallocationChange

	err := p.store.WithinTx(ctx, func(tx repositories.Store) error {
		candidate, err := tx.Candidates().FindByID(ctx, rec.CandidateID)
		if err != nil {
			return err
		}

		if candidate.Version != rec.Version || !candidate.IsPending || candidate.IsLocked {
			return fmt.Errorf("candidate %d is no longer pending at version %d: %w",
				candidate.ID, rec.Version, repositories.ErrConcurrentUpdate)
		}

		if err := upsertMatch(ctx, tx, candidate.ID, rec.Evaluation, models.MethodBatch, now); err != nil {
			return err
		}

		oldID := candidate.AssignedPositionID
		oldName := candidate.AssignedPositionName
		oldScore := candidate.AssignedScore
		positionID := rec.Position.ID

		candidate.AssignedPositionID = &positionID
		candidate.AssignedPositionName = rec.Position.Name
		candidate.AssignedScore = rec.Evaluation.Score
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
			NewPositionID:   &positionID,
			NewPositionName: rec.Position.Name,
			NewScore:        rec.Evaluation.Score,
			Trigger:         models.TriggerNewPosition,
			Reason:          newPositionReason,
			Actor:           actorOrSystem(rec.Actor),
			RunID:           rec.RunID,
		}); err != nil {
			return err
		}

		if err := tx.Audit().Append(ctx, &models.AuditLog{
			Actor:       rec.Actor,
			Action:      models.ActionReallocateIntention,
			CandidateID: &candidate.ID,
			PositionID:  &positionID,
			RunID:       rec.RunID,
			Details: datatypes.JSONMap{
				"explicit_position": candidate.IntentionName(),
				"old_position":      oldName,
				"new_position":      rec.Position.Name,
				"old_score":         oldScore,
				"new_score":         rec.Evaluation.Score,
				"confidence":        rec.Match.Confidence,
				"match_reasoning":   rec.Match.Reasoning,
				"evaluation_failed": rec.Evaluation.Degraded,
			},
		}); err != nil {
			return err
		}

		ids := []uint{positionID}
		if oldID != nil && *oldID != positionID {
			ids = append(ids, *oldID)
		}
		if err := refreshCounters(ctx, tx, ids...); err != nil {
			return err
		}

		change = &models.ReallocationChange{
			CandidateID:      candidate.ID,
			CandidateName:    candidate.Name,
			OldPosition:      oldName,
			NewPosition:      rec.Position.Name,
			OldScore:         oldScore,
			NewScore:         rec.Evaluation.Score,
			ScoreImprovement: rec.Evaluation.Score - oldScore,
			Confidence:       rec.Match.Confidence,
			Reason:           newPositionReason,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConcurrentUpdate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return change, nil
}

// upsertMatch keeps at most one row per candidate and position.
func upsertMatch(ctx context.Context, tx repositories.Store, candidateID uint, eval Evaluation, method models.EvaluationMethod, at time.Time) error {
	existing, err := tx.Matches().FindByPair(ctx, candidateID, eval.PositionID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		match := eval.ToMatch(candidateID, method, at)
		return tx.Matches().Create(ctx, &match)
	case err != nil:
		return err
	}

	eval.Apply(existing, method, at)
	return tx.Matches().Update(ctx, existing)
}

// refreshCounters recomputes the denormalised position counters from match rows.
func refreshCounters(ctx context.Context, tx repositories.Store, positionIDs ...uint) error {
	seen := make(map[uint]bool, len(positionIDs))
	for _, id := range positionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		stats, err := tx.Matches().StatsForPosition(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Positions().UpdateCounters(ctx, stats); err != nil {
			return err
		}
	}
	return nil
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return models.SystemActor
	}
	return actor
}
