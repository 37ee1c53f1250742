package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talent-allocator/internal/models"
)

type IntakeJobRepository interface {
	Create(ctx context.Context, job *models.IntakeJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.IntakeJob, error)
	// Claim moves a queued job to processing. ErrConcurrentUpdate means another worker owns it.
	Claim(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, candidateID uint, degraded []string) error
	MarkFailed(ctx context.Context, id uuid.UUID, kind, message string) error
	FindQueued(ctx context.Context, limit int) ([]models.IntakeJob, error)
}

type intakeJobRepository struct {
	db *gorm.DB
}

func NewIntakeJobRepository(db *gorm.DB) IntakeJobRepository {
	return &intakeJobRepository{db: db}
}

func (r *intakeJobRepository) Create(ctx context.Context, job *models.IntakeJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.StatusQueued
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create intake job: %w", err)
	}
	return nil
}

func (r *intakeJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.IntakeJob, error) {
	var job models.IntakeJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, fmt.Errorf("failed to find intake job %s: %w", id, translate(err))
	}
	return &job, nil
}

func (r *intakeJobRepository) Claim(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.IntakeJob{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to claim intake job %s: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("intake job %s: %w", id, ErrConcurrentUpdate)
	}

	return nil
}

func (r *intakeJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, candidateID uint, degraded []string) error {
	job := models.IntakeJob{ID: id}
	result := r.db.WithContext(ctx).Model(&job).
		Select("status", "candidate_id", "degraded", "updated_at").
		Updates(models.IntakeJob{
			Status:      models.StatusCompleted,
			CandidateID: &candidateID,
			Degraded:    degraded,
			UpdatedAt:   time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to complete intake job %s: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("intake job %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *intakeJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, kind, message string) error {
	result := r.db.WithContext(ctx).Model(&models.IntakeJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_kind":    kind,
			"error_message": message,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark intake job %s failed: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("intake job %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *intakeJobRepository) FindQueued(ctx context.Context, limit int) ([]models.IntakeJob, error) {
	var jobs []models.IntakeJob
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find queued intake jobs: %w", err)
	}
	return jobs, nil
}
