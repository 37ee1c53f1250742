package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories so that a unit of work can run them in one transaction.
type Store interface {
	Candidates() CandidateRepository
	Positions() PositionRepository
	Matches() MatchRepository
	History() HistoryRepository
	Audit() AuditRepository
	Snapshots() SnapshotRepository
	IntakeJobs() IntakeJobRepository

	// WithinTx runs fn against a transactional Store. Any error rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Candidates() CandidateRepository { return NewCandidateRepository(s.db) }
func (s *store) Positions() PositionRepository   { return NewPositionRepository(s.db) }
func (s *store) Matches() MatchRepository        { return NewMatchRepository(s.db) }
func (s *store) History() HistoryRepository      { return NewHistoryRepository(s.db) }
func (s *store) Audit() AuditRepository          { return NewAuditRepository(s.db) }
func (s *store) Snapshots() SnapshotRepository   { return NewSnapshotRepository(s.db) }
func (s *store) IntakeJobs() IntakeJobRepository { return NewIntakeJobRepository(s.db) }

func (s *store) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
