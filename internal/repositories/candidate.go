package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/talent-allocator/internal/models"
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, id uint) (*models.Candidate, error)
	FindAll(ctx context.Context) ([]models.Candidate, error)
	List(ctx context.Context, skip, limit int) ([]models.Candidate, int64, error)
	// FindPendingIntentions returns unlocked candidates still waiting for their stated position, oldest first.
	FindPendingIntentions(ctx context.Context) ([]models.Candidate, error)
	// UpdateAllocation writes the allocation columns if the stored version still matches candidate.Version.
	UpdateAllocation(ctx context.Context, candidate *models.Candidate) error
	Count(ctx context.Context) (int64, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.Version == 0 {
		candidate.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", translate(err))
	}
	return nil
}

func (r *candidateRepository) FindByID(ctx context.Context, id uint) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&candidate).Error; err != nil {
		return nil, fmt.Errorf("failed to find candidate %d: %w", id, translate(err))
	}
	return &candidate, nil
}

func (r *candidateRepository) FindAll(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) List(ctx context.Context, skip, limit int) ([]models.Candidate, int64, error) {
	var (
		candidates []models.Candidate
		total      int64
	)

	db := r.db.WithContext(ctx).Model(&models.Candidate{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	err := r.db.WithContext(ctx).
		Order("uploaded_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}

	return candidates, total, nil
}

func (r *candidateRepository) FindPendingIntentions(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.WithContext(ctx).
		Where("is_pending = ? AND is_locked = ? AND has_explicit_intention = ?", true, false, true).
		Order("id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) UpdateAllocation(ctx context.Context, candidate *models.Candidate) error {
	if err := candidate.CheckInvariants(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ? AND version = ?", candidate.ID, candidate.Version).
		Updates(map[string]interface{}{
			"assigned_position_id":   candidate.AssignedPositionID,
			"assigned_position_name": candidate.AssignedPositionName,
			"assigned_score":         candidate.AssignedScore,
			"is_locked":              candidate.IsLocked,
			"is_pending":             candidate.IsPending,
			"reallocation_count":     candidate.ReallocationCount,
			"last_reallocated_at":    candidate.LastReallocatedAt,
			"version":                candidate.Version + 1,
			"updated_at":             time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update candidate %d: %w", candidate.ID, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %d at version %d: %w", candidate.ID, candidate.Version, ErrConcurrentUpdate)
	}

	candidate.Version++
	return nil
}

func (r *candidateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Candidate{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return count, nil
}
