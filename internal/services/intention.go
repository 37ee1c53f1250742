package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/models"
)

const (
	intentionTemperature = 0.1
	matchTemperature     = 0.1
)

// Intention is what the candidate says they are applying for.
type Intention struct {
	HasExplicit   bool   `json:"has_explicit_intention"`
	PositionName  string `json:"explicit_position_name,omitempty"`
	SourceExcerpt string `json:"source_excerpt,omitempty"`
	Reasoning     string `json:"reasoning"`
	Degraded      bool   `json:"degraded"`
}

// IntentionMatch is the verdict on whether a position fulfils a stated intention.
type IntentionMatch struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Degraded   bool    `json:"degraded"`
}

type intentionResponse struct {
	HasExplicit   bool   `json:"has_explicit_intention"`
	PositionName  string `json:"explicit_position_name"`
	SourceExcerpt string `json:"source_excerpt"`
	Reasoning     string `json:"reasoning"`
}

type matchResponse struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type IntentionClassifier struct {
	r *reasoner
}

func NewIntentionClassifier(gen TextGenerator, timeout time.Duration, log *zap.Logger) *IntentionClassifier {
	return &IntentionClassifier{r: newReasoner(gen, timeout, log)}
}

// Classify never fails: any call or parse error yields "no explicit intention" with the reason attached.
func (c *IntentionClassifier) Classify(ctx context.Context, profile models.CandidateProfile) Intention {
	var resp intentionResponse
	if err := c.r.ask(ctx, c.r.prompts.BuildIntentionPrompt(profile), intentionTemperature, &resp); err != nil {
		return Intention{
			Reasoning: "intention analysis failed: " + err.Error(),
			Degraded:  true,
		}
	}

	intention := Intention{
		HasExplicit:   resp.HasExplicit,
		PositionName:  cleanOptional(resp.PositionName),
		SourceExcerpt: cleanOptional(resp.SourceExcerpt),
		Reasoning:     resp.Reasoning,
	}

	// A claimed intention without a name cannot be resolved against any position.
	if intention.HasExplicit && intention.PositionName == "" {
		intention.HasExplicit = false
	}
	if !intention.HasExplicit {
		intention.PositionName = ""
	}

	return intention
}

// MatchIntention never fails: errors yield a non-match with zero confidence.
func (c *IntentionClassifier) MatchIntention(ctx context.Context, intention string, position models.Position) IntentionMatch {
	var resp matchResponse
	prompt := c.r.prompts.BuildMatchIntentionPrompt(intention, position.Name, position.Description)
	if err := c.r.ask(ctx, prompt, matchTemperature, &resp); err != nil {
		return IntentionMatch{
			Reasoning: "intention match failed: " + err.Error(),
			Degraded:  true,
		}
	}

	return IntentionMatch{
		Match:      resp.Match,
		Confidence: normalizeConfidence(resp.Confidence),
		Reasoning:  resp.Reasoning,
	}
}

// normalizeConfidence accepts a fraction or a percentage and bounds it to [0, 1].
func normalizeConfidence(c float64) float64 {
	if c > 1 && c <= 100 {
		c /= 100
	}
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
