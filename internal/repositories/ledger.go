package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/talent-allocator/internal/models"
)

// HistoryRepository is append-only.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.AllocationHistory) error
	ListByCandidate(ctx context.Context, candidateID uint) ([]models.AllocationHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *models.AllocationHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append allocation history: %w", err)
	}
	return nil
}

func (r *historyRepository) ListByCandidate(ctx context.Context, candidateID uint) ([]models.AllocationHistory, error) {
	var entries []models.AllocationHistory
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list allocation history: %w", err)
	}
	return entries, nil
}

// AuditRepository is append-only.
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	if entry.Actor == "" {
		entry.Actor = models.SystemActor
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	db := r.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, nil
}

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *models.CandidateSnapshot) error
	ListByCandidate(ctx context.Context, candidateID uint) ([]models.CandidateSnapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *models.CandidateSnapshot) error {
	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("failed to create candidate snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) ListByCandidate(ctx context.Context, candidateID uint) ([]models.CandidateSnapshot, error) {
	var snapshots []models.CandidateSnapshot
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("version ASC, id ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate snapshots: %w", err)
	}
	return snapshots, nil
}
