package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/logger"
)

// TextGenerator is a reasoning backend: a prompt goes in, free-form text comes out.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	Provider() string
	Model() string
}

type retryingGenerator struct {
	TextGenerator
	maxRetries int
	delay      time.Duration
	log        *zap.Logger
}

// WithRetry retries failed calls up to maxRetries attempts in total. Context errors are never retried.
func WithRetry(gen TextGenerator, maxRetries int, delay time.Duration, log *zap.Logger) TextGenerator {
	if maxRetries <= 1 {
		return gen
	}
	return &retryingGenerator{
		TextGenerator: gen,
		maxRetries:    maxRetries,
		delay:         delay,
		log:           logger.WithFields(log, logger.ReasoningFields(gen.Provider(), gen.Model())...),
	}
}

func (g *retryingGenerator) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		result, err := g.TextGenerator.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		if attempt == g.maxRetries {
			break
		}

		g.log.Warn("reasoning call failed, retrying", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(g.delay):
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", g.maxRetries, lastErr)
}
