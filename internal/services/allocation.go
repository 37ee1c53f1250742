package services

import (
	"errors"
	"strings"

	"alfredoptarigan/talent-allocator/internal/models"
)

var errNoEvaluations = errors.New("no position evaluations to decide from")

// Decision is the outcome of the allocation rule for one candidate.
type Decision struct {
	State    models.AllocationState
	Position models.Position
	Score    int
	// Best is the highest scored evaluation, which differs from Position only for locked candidates.
	Best Evaluation
}

func (d Decision) IsLocked() bool  { return d.State == models.StateLocked }
func (d Decision) IsPending() bool { return d.State == models.StatePending }

// ResolveIntention finds the position a stated intention names: exact name first, then
// a case-insensitive comparison of trimmed names. positions must be ordered by id.
func ResolveIntention(name string, positions []models.Position) (models.Position, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Position{}, false
	}

	for _, p := range positions {
		if p.Name == name {
			return p, true
		}
	}
	for _, p := range positions {
		if strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return p, true
		}
	}
	return models.Position{}, false
}

// BestEvaluation returns the highest score. Equal scores go to the lowest position id.
func BestEvaluation(evals []Evaluation) (Evaluation, bool) {
	if len(evals) == 0 {
		return Evaluation{}, false
	}

	best := evals[0]
	for _, e := range evals[1:] {
		if e.Score > best.Score || (e.Score == best.Score && e.PositionID < best.PositionID) {
			best = e
		}
	}
	return best, true
}

// Decide applies the allocation rule. positions are the active positions the evaluations were made against.
func Decide(intention Intention, positions []models.Position, evals []Evaluation) (Decision, error) {
	best, ok := BestEvaluation(evals)
	if !ok {
		return Decision{}, errNoEvaluations
	}

	byID := make(map[uint]models.Position, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}
	scores := make(map[uint]int, len(evals))
	for _, e := range evals {
		scores[e.PositionID] = e.Score
	}

	bestPosition, ok := byID[best.PositionID]
	if !ok {
		bestPosition = models.Position{ID: best.PositionID, Name: best.PositionName, IsActive: true}
	}

	if intention.HasExplicit && strings.TrimSpace(intention.PositionName) != "" {
		if target, found := ResolveIntention(intention.PositionName, positions); found {
			if score, evaluated := scores[target.ID]; evaluated {
				return Decision{State: models.StateLocked, Position: target, Score: score, Best: best}, nil
			}
		}
		return Decision{State: models.StatePending, Position: bestPosition, Score: best.Score, Best: best}, nil
	}

	return Decision{State: models.StateFree, Position: bestPosition, Score: best.Score, Best: best}, nil
}
