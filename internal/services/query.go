package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

const (
	defaultPageLimit   = 20
	maxPageLimit       = 100
	defaultSearchLimit = 50
	defaultAuditLimit  = 50
)

// QueryService answers every read. Stats are always recomputed from match rows.
type QueryService struct {
	store repositories.Store
}

func NewQueryService(store repositories.Store) *QueryService {
	return &QueryService{store: store}
}

func (s *QueryService) Candidate(ctx context.Context, id uint) (*models.CandidateDetail, error) {
	candidate, err := s.store.Candidates().FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrCandidateNotFound)
	}

	matches, err := s.store.Matches().ListByCandidate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &models.CandidateDetail{Candidate: candidate, Matches: matches}, nil
}

func (s *QueryService) ListCandidates(ctx context.Context, skip, limit int) (*models.CandidatePage, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.store.Candidates().List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &models.CandidatePage{Total: total, Skip: skip, Limit: limit, Items: items}, nil
}

// Search filters candidates by fuzzy name and, when a position is named, by their score for it.
// Without a position the score and grade filters apply to the assigned score.
func (s *QueryService) Search(ctx context.Context, q models.CandidateSearch) ([]models.Candidate, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	candidates, err := s.store.Candidates().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	scores := make(map[uint]int, len(candidates))
	for _, c := range candidates {
		scores[c.ID] = c.AssignedScore
	}

	if name := strings.TrimSpace(q.PositionName); name != "" {
		positions, err := s.store.Positions().List(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		position, ok := ResolveIntention(name, positions)
		if !ok {
			return []models.Candidate{}, nil
		}

		matches, err := s.store.Matches().ListByPosition(ctx, position.ID, repositories.MatchFilter{})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		scores = make(map[uint]int, len(matches))
		for _, m := range matches {
			scores[m.CandidateID] = m.Score
		}
	}

	var minGrade models.Grade
	if q.MinGrade != "" {
		minGrade, _ = models.ParseGrade(q.MinGrade)
	}

	filtered := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		score, ok := scores[c.ID]
		if !ok {
			continue
		}
		if q.MinScore != nil && score < *q.MinScore {
			continue
		}
		if minGrade != "" && models.GradeForScore(score).Rank() < minGrade.Rank() {
			continue
		}
		filtered = append(filtered, c)
	}

	if term := strings.TrimSpace(q.Name); term != "" {
		filtered = rankByName(term, filtered)
	} else {
		sort.SliceStable(filtered, func(i, j int) bool {
			return scores[filtered[i].ID] > scores[filtered[j].ID]
		})
	}

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// rankByName keeps fuzzy name matches, closest first.
func rankByName(term string, candidates []models.Candidate) []models.Candidate {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(term, names)
	sort.Stable(ranks)

	out := make([]models.Candidate, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, candidates[r.OriginalIndex])
	}
	return out
}

// PositionCandidates ranks every candidate evaluated against a position.
func (s *QueryService) PositionCandidates(ctx context.Context, positionID uint, minGrade string, qualifiedOnly bool, limit int) ([]models.RankedCandidate, error) {
	if _, err := s.store.Positions().FindByID(ctx, positionID); err != nil {
		return nil, notFoundOr(err, ErrPositionNotFound)
	}

	filter := repositories.MatchFilter{QualifiedOnly: qualifiedOnly, Limit: limit}
	if g, ok := models.ParseGrade(minGrade); ok {
		filter.Grades = models.GradesAtLeast(g)
	}

	matches, err := s.store.Matches().ListByPosition(ctx, positionID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	ranked := make([]models.RankedCandidate, 0, len(matches))
	for _, m := range matches {
		c, err := s.store.Candidates().FindByID(ctx, m.CandidateID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		ranked = append(ranked, models.RankedCandidate{
			CandidateID: c.ID,
			Name:        c.Name,
			Email:       c.Email,
			Phone:       c.Phone,
			Score:       m.Score,
			Grade:       m.Grade,
			IsQualified: m.IsQualified,
			IsPrimary:   c.AssignedPositionID != nil && *c.AssignedPositionID == positionID,
			Rationale:   m.Rationale,
		})
	}

	return ranked, nil
}

// PositionStats recomputes the aggregates and refreshes the stored counters as a side effect.
func (s *QueryService) PositionStats(ctx context.Context, positionID uint) (*models.PositionStats, error) {
	position, err := s.store.Positions().FindByID(ctx, positionID)
	if err != nil {
		return nil, notFoundOr(err, ErrPositionNotFound)
	}

	stats, err := s.store.Matches().StatsForPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	stats.PositionName = position.Name

	if err := s.store.Positions().UpdateCounters(ctx, stats); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &stats, nil
}

func (s *QueryService) History(ctx context.Context, candidateID uint) ([]models.AllocationHistory, error) {
	if _, err := s.store.Candidates().FindByID(ctx, candidateID); err != nil {
		return nil, notFoundOr(err, ErrCandidateNotFound)
	}

	entries, err := s.store.History().ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return entries, nil
}

func (s *QueryService) Audit(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	entries, err := s.store.Audit().List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return entries, nil
}

func (s *QueryService) Health(ctx context.Context) (*models.HealthResponse, error) {
	total, active, err := s.store.Positions().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	candidates, err := s.store.Candidates().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &models.HealthResponse{
		Status:          "healthy",
		PositionCount:   total,
		ActivePositions: active,
		CandidateCount:  candidates,
		SystemReady:     active > 0,
	}, nil
}
