package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/talent-allocator/internal/models"
)

// MatchFilter narrows the match rows of one position.
type MatchFilter struct {
	MinScore      *int
	Grades        []models.Grade
	QualifiedOnly bool
	Limit         int
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.CandidatePositionMatch) error
	CreateBatch(ctx context.Context, matches []models.CandidatePositionMatch) error
	FindByPair(ctx context.Context, candidateID, positionID uint) (*models.CandidatePositionMatch, error)
	// Update rewrites the evaluation columns of an existing row in place.
	Update(ctx context.Context, match *models.CandidatePositionMatch) error
	ListByCandidate(ctx context.Context, candidateID uint) ([]models.CandidatePositionMatch, error)
	ListByPosition(ctx context.Context, positionID uint, filter MatchFilter) ([]models.CandidatePositionMatch, error)
	// StatsForPosition recomputes the aggregate counts from match rows.
	StatsForPosition(ctx context.Context, positionID uint) (models.PositionStats, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *models.CandidatePositionMatch) error {
	if err := r.db.WithContext(ctx).Omit("Position").Create(match).Error; err != nil {
		return fmt.Errorf("failed to create match for candidate %d position %d: %w", match.CandidateID, match.PositionID, translate(err))
	}
	return nil
}

func (r *matchRepository) CreateBatch(ctx context.Context, matches []models.CandidatePositionMatch) error {
	if len(matches) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit("Position").Create(&matches).Error; err != nil {
		return fmt.Errorf("failed to create matches: %w", translate(err))
	}
	return nil
}

func (r *matchRepository) FindByPair(ctx context.Context, candidateID, positionID uint) (*models.CandidatePositionMatch, error) {
	var match models.CandidatePositionMatch
	err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND position_id = ?", candidateID, positionID).
		First(&match).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find match for candidate %d position %d: %w", candidateID, positionID, translate(err))
	}
	return &match, nil
}

func (r *matchRepository) Update(ctx context.Context, match *models.CandidatePositionMatch) error {
	result := r.db.WithContext(ctx).Model(match).
		Select("score", "grade", "is_qualified", "rationale", "matches", "gaps", "potential", "degraded", "method", "evaluated_at", "updated_at").
		Updates(match)

	if result.Error != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("match %d: %w", match.ID, ErrNotFound)
	}

	return nil
}

func (r *matchRepository) ListByCandidate(ctx context.Context, candidateID uint) ([]models.CandidatePositionMatch, error) {
	var matches []models.CandidatePositionMatch
	err := r.db.WithContext(ctx).
		Preload("Position").
		Where("candidate_id = ?", candidateID).
		Order("score DESC, position_id ASC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for candidate %d: %w", candidateID, err)
	}
	return matches, nil
}

func (r *matchRepository) ListByPosition(ctx context.Context, positionID uint, filter MatchFilter) ([]models.CandidatePositionMatch, error) {
	var matches []models.CandidatePositionMatch

	db := r.db.WithContext(ctx).Where("position_id = ?", positionID)
	if filter.MinScore != nil {
		db = db.Where("score >= ?", *filter.MinScore)
	}
	if len(filter.Grades) > 0 {
		db = db.Where("grade IN ?", filter.Grades)
	}
	if filter.QualifiedOnly {
		db = db.Where("is_qualified = ?", true)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	if err := db.Order("score DESC, candidate_id ASC").Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("failed to list matches for position %d: %w", positionID, err)
	}
	return matches, nil
}

type gradeAggregate struct {
	Grade     models.Grade
	Count     int
	Total     int64
	Qualified int
}

func (r *matchRepository) StatsForPosition(ctx context.Context, positionID uint) (models.PositionStats, error) {
	var rows []gradeAggregate
	err := r.db.WithContext(ctx).Model(&models.CandidatePositionMatch{}).
		Select("grade, COUNT(*) AS count, COALESCE(SUM(score), 0) AS total, "+
			"COALESCE(SUM(CASE WHEN is_qualified THEN 1 ELSE 0 END), 0) AS qualified").
		Where("position_id = ?", positionID).
		Group("grade").
		Scan(&rows).Error
	if err != nil {
		return models.PositionStats{}, fmt.Errorf("failed to compute stats for position %d: %w", positionID, err)
	}

	stats := models.PositionStats{
		PositionID: positionID,
		GradeCounts: map[models.Grade]int{
			models.GradeA: 0,
			models.GradeB: 0,
			models.GradeC: 0,
			models.GradeD: 0,
		},
	}

	var sum int64
	for _, row := range rows {
		stats.GradeCounts[row.Grade] += row.Count
		stats.Total += row.Count
		stats.Qualified += row.Qualified
		sum += row.Total
	}

	if stats.Total > 0 {
		stats.AverageScore = float64(sum) / float64(stats.Total)
	}

	return stats, nil
}
