package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
	"alfredoptarigan/talent-allocator/internal/testutil"
)

var evaluatedPosition = regexp.MustCompile(`scoring a candidate for the (.+) position\.`)

// script drives a StubGenerator. Fields may be changed between calls.
type script struct {
	mu        sync.Mutex
	intention string
	scores    map[string]int
	failEval  map[string]bool
	match     string
	analysis  string
}

func newScript() *script {
	return &script{
		intention: `{"has_explicit_intention": false, "explicit_position_name": null, "reasoning": "no target role stated"}`,
		scores:    map[string]int{},
		failEval:  map[string]bool{},
		match:     `{"match": false, "confidence": 0.1, "reasoning": "different role"}`,
		analysis:  `{"required_skills": ["Go"], "nice_to_have": ["Kubernetes"], "evaluation_rubric": "86+ strong fit"}`,
	}
}

func (s *script) set(fn func(s *script)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *script) generator() *testutil.StubGenerator {
	return &testutil.StubGenerator{Handler: s.reply}
}

func (s *script) reply(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch TaskOf(prompt) {
	case TaskClassifyIntention:
		return s.intention, nil
	case TaskEvaluatePosition:
		m := evaluatedPosition.FindStringSubmatch(prompt)
		if m == nil {
			return "", errors.New("no position in prompt")
		}
		if s.failEval[m[1]] {
			return "", errors.New("backend unavailable")
		}
		return fmt.Sprintf(`{"overall_score": %d, "grade": "A", "rationale": "scored for %s", "matches": ["Go"], "gaps": [], "potential": "high"}`,
			s.scores[m[1]], m[1]), nil
	case TaskMatchIntention:
		return s.match, nil
	case TaskAnalyzePosition:
		return s.analysis, nil
	}
	return "", errors.New("unexpected prompt")
}

func statedIntention(name string) string {
	return fmt.Sprintf(`{"has_explicit_intention": true, "explicit_position_name": %q, "source_excerpt": "Objective: %s", "reasoning": "objective line"}`, name, name)
}

func matchReply(match bool, confidence float64) string {
	return fmt.Sprintf(`{"match": %t, "confidence": %v, "reasoning": "compared titles"}`, match, confidence)
}

type harness struct {
	store       repositories.Store
	script      *script
	gen         *testutil.StubGenerator
	pipeline    *ResumePipeline
	positions   *PositionService
	assignments *AssignmentService
	coordinator *PersistenceCoordinator
	queries     *QueryService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := repositories.NewStore(testutil.NewDB(t))
	sc := newScript()
	gen := sc.generator()
	log := zap.NewNop()

	classifier := NewIntentionClassifier(gen, 0, log)
	evaluator := NewPositionEvaluator(gen, 0, 2, log)
	coordinator := NewPersistenceCoordinator(store, log)
	realloc := NewReallocationService(coordinator, classifier, evaluator, DefaultMatchThreshold, log)

	return &harness{
		store:       store,
		script:      sc,
		gen:         gen,
		pipeline:    NewResumePipeline(store, NewPDFParserService(), NewProfileExtractor(), classifier, evaluator, coordinator, log),
		positions:   NewPositionService(store, evaluator, realloc, nil, log),
		assignments: NewAssignmentService(store, evaluator, log),
		coordinator: coordinator,
		queries:     NewQueryService(store),
	}
}

func (h *harness) addPosition(t *testing.T, name string, active bool) models.Position {
	t.Helper()
	p := models.Position{
		Name:           name,
		Description:    name + " role",
		RequiredSkills: []string{"Go"},
		NiceToHave:     []string{},
		IsActive:       active,
	}
	require.NoError(t, h.store.Positions().Create(context.Background(), &p))
	return p
}

func (h *harness) upload(t *testing.T, resume string) *models.ResumeResult {
	t.Helper()
	result, err := h.pipeline.Process(context.Background(), ResumeInput{
		Filename: "resume.txt",
		Data:     []byte(resume),
		Actor:    "recruiter",
	})
	require.NoError(t, err)
	return result
}

func (h *harness) tasks() []string {
	var out []string
	for _, p := range h.gen.Calls() {
		out = append(out, TaskOf(p))
	}
	return out
}
