package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/talent-allocator/internal/models"
)

type PositionRepository interface {
	Create(ctx context.Context, position *models.Position) error
	FindByID(ctx context.Context, id uint) (*models.Position, error)
	FindByName(ctx context.Context, name string) (*models.Position, error)
	// ListActive returns active positions ordered by id, the tie-break order for allocation.
	ListActive(ctx context.Context) ([]models.Position, error)
	List(ctx context.Context, activeOnly bool) ([]models.Position, error)
	SetActive(ctx context.Context, id uint, active bool) error
	UpdateCounters(ctx context.Context, stats models.PositionStats) error
	Count(ctx context.Context) (total int64, active int64, err error)
}

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Create(ctx context.Context, position *models.Position) error {
	if err := r.db.WithContext(ctx).Create(position).Error; err != nil {
		return fmt.Errorf("failed to create position %q: %w", position.Name, translate(err))
	}
	return nil
}

func (r *positionRepository) FindByID(ctx context.Context, id uint) (*models.Position, error) {
	var position models.Position
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&position).Error; err != nil {
		return nil, fmt.Errorf("failed to find position %d: %w", id, translate(err))
	}
	return &position, nil
}

func (r *positionRepository) FindByName(ctx context.Context, name string) (*models.Position, error) {
	var position models.Position
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&position).Error; err != nil {
		return nil, fmt.Errorf("failed to find position %q: %w", name, translate(err))
	}
	return &position, nil
}

func (r *positionRepository) ListActive(ctx context.Context) ([]models.Position, error) {
	return r.List(ctx, true)
}

func (r *positionRepository) List(ctx context.Context, activeOnly bool) ([]models.Position, error) {
	var positions []models.Position

	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Order("id ASC").Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

func (r *positionRepository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.Position{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update position %d: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("position %d: %w", id, ErrNotFound)
	}

	return nil
}

func (r *positionRepository) UpdateCounters(ctx context.Context, stats models.PositionStats) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Position{}).
		Where("id = ?", stats.PositionID).
		Updates(map[string]interface{}{
			"total_candidates":      stats.Total,
			"qualified_candidates":  stats.Qualified,
			"grade_a_count":         stats.GradeCounts[models.GradeA],
			"grade_b_count":         stats.GradeCounts[models.GradeB],
			"grade_c_count":         stats.GradeCounts[models.GradeC],
			"grade_d_count":         stats.GradeCounts[models.GradeD],
			"counters_refreshed_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update counters for position %d: %w", stats.PositionID, result.Error)
	}

	return nil
}

func (r *positionRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, active int64

	if err := r.db.WithContext(ctx).Model(&models.Position{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count positions: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(&models.Position{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count active positions: %w", err)
	}

	return total, active, nil
}
