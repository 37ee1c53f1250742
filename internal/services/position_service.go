package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/talent-allocator/internal/logger"
	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

const defaultSimilarLimit = 5

var ErrIndexDisabled = errors.New("position index is not configured")

type PositionService struct {
	store     repositories.Store
	evaluator *PositionEvaluator
	realloc   *ReallocationService
	index     PositionIndex
	log       *zap.Logger
}

// NewPositionService accepts a nil index; similarity search is then unavailable.
func NewPositionService(
	store repositories.Store,
	evaluator *PositionEvaluator,
	realloc *ReallocationService,
	index PositionIndex,
	log *zap.Logger,
) *PositionService {
	return &PositionService{
		store:     store,
		evaluator: evaluator,
		realloc:   realloc,
		index:     index,
		log:       logger.WithFields(log),
	}
}

// Create analyses, stores and indexes a position, then runs the reallocation sweep for it.
func (s *PositionService) Create(ctx context.Context, req models.CreatePositionRequest, actor string) (*models.CreatePositionResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: position name is empty", ErrMalformedInput)
	}

	if _, err := s.store.Positions().FindByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrPositionExists, name)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	analysis := s.evaluator.AnalyzePosition(ctx, name, req.Description, req.RequiredSkills, req.NiceToHave)

	position := &models.Position{
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		RequiredSkills:   analysis.RequiredSkills,
		NiceToHave:       analysis.NiceToHave,
		EvaluationRubric: analysis.EvaluationRubric,
		IsActive:         true,
	}

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := tx.Positions().Create(ctx, position); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, &models.AuditLog{
			Actor:      actor,
			Action:     models.ActionCreatePosition,
			PositionID: &position.ID,
			Details: datatypes.JSONMap{
				"name":              position.Name,
				"required_skills":   []string(position.RequiredSkills),
				"nice_to_have":      []string(position.NiceToHave),
				"analysis_degraded": analysis.Degraded,
			},
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrPositionExists, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log := s.log.With(zap.Uint(logger.FieldPositionID, position.ID), zap.String("position", position.Name))
	log.Info("position created", zap.Bool("analysis_degraded", analysis.Degraded))

	s.indexPosition(ctx, *position, log)

	changes, err := s.realloc.ReallocateForPosition(ctx, *position, actor)
	if err != nil {
		log.Error("reallocation sweep failed", zap.Error(err))
	}
	if changes == nil {
		changes = []models.ReallocationChange{}
	}

	return &models.CreatePositionResponse{
		PositionID:       position.ID,
		Name:             position.Name,
		RequiredSkills:   position.RequiredSkills,
		NiceToHave:       position.NiceToHave,
		AnalysisDegraded: analysis.Degraded,
		Reallocations:    changes,
	}, nil
}

func (s *PositionService) indexPosition(ctx context.Context, position models.Position, log *zap.Logger) {
	if s.index == nil {
		return
	}
	if err := s.index.Upsert(ctx, position); err != nil {
		log.Warn("failed to index position", zap.Error(err))
	}
}

func (s *PositionService) List(ctx context.Context, activeOnly bool) ([]models.Position, error) {
	positions, err := s.store.Positions().List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return positions, nil
}

func (s *PositionService) Get(ctx context.Context, id uint) (*models.Position, error) {
	position, err := s.store.Positions().FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrPositionNotFound)
	}
	return position, nil
}

// SetActive toggles a position. Inactive positions are neither evaluated nor lock targets.
func (s *PositionService) SetActive(ctx context.Context, id uint, active bool, actor string) (*models.Position, error) {
	var position *models.Position

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Positions().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if current.IsActive == active {
			position = current
			return nil
		}

		if err := tx.Positions().SetActive(ctx, id, active); err != nil {
			return err
		}
		current.IsActive = active
		position = current

		return tx.Audit().Append(ctx, &models.AuditLog{
			Actor:      actor,
			Action:     models.ActionUpdatePositionStatus,
			PositionID: &id,
			Details:    datatypes.JSONMap{"name": current.Name, "is_active": active},
		})
	})
	if err != nil {
		return nil, notFoundOr(err, ErrPositionNotFound)
	}

	log := s.log.With(zap.Uint(logger.FieldPositionID, id))
	if s.index != nil {
		if active {
			s.indexPosition(ctx, *position, log)
		} else if err := s.index.Remove(ctx, id); err != nil {
			log.Warn("failed to remove position from index", zap.Error(err))
		}
	}

	return position, nil
}

// Seed creates every position whose name does not exist yet, through the normal creation path.
func (s *PositionService) Seed(ctx context.Context, defs []models.CreatePositionRequest, actor string) (created int, skipped int, err error) {
	for _, def := range defs {
		_, err := s.Create(ctx, def, actor)
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrPositionExists):
			skipped++
		default:
			return created, skipped, fmt.Errorf("failed to seed position %q: %w", def.Name, err)
		}
	}
	return created, skipped, nil
}

// SeedIfEmpty seeds only when the catalog has no positions at all.
func (s *PositionService) SeedIfEmpty(ctx context.Context, defs []models.CreatePositionRequest) (int, error) {
	total, _, err := s.store.Positions().Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if total > 0 {
		return 0, nil
	}
	created, _, err := s.Seed(ctx, defs, models.SystemActor)
	return created, err
}

func (s *PositionService) Similar(ctx context.Context, text string, limit int) ([]models.SimilarPosition, error) {
	if s.index == nil {
		return nil, ErrIndexDisabled
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	return s.index.Similar(ctx, text, limit)
}

// notFoundOr maps a repository miss onto the service sentinel and anything else onto ErrPersistence.
func notFoundOr(err error, sentinel error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return sentinel
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
