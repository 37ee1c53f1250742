package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/logger"
	"alfredoptarigan/talent-allocator/internal/metrics"
)

const responsePreviewLimit = 300

// reasoner runs a single reasoning call under a timeout and decodes its JSON object.
type reasoner struct {
	gen     TextGenerator
	prompts *PromptBuilder
	timeout time.Duration
	log     *zap.Logger
}

func newReasoner(gen TextGenerator, timeout time.Duration, log *zap.Logger) *reasoner {
	fields := []zap.Field{}
	if gen != nil {
		fields = logger.ReasoningFields(gen.Provider(), gen.Model())
	}
	return &reasoner{
		gen:     gen,
		prompts: NewPromptBuilder(),
		timeout: timeout,
		log:     logger.WithFields(log, fields...),
	}
}

func (r *reasoner) ask(ctx context.Context, prompt string, temperature float32, target interface{}) error {
	call := TaskOf(prompt)
	if r.gen == nil {
		metrics.RecordReasoningCall(call, metrics.CallError, 0)
		return errors.New("no reasoning backend configured")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := r.gen.GenerateText(ctx, prompt, temperature)
	if err != nil {
		outcome := metrics.CallError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = metrics.CallTimeout
		}
		metrics.RecordReasoningCall(call, outcome, time.Since(start))
		return fmt.Errorf("%s call failed: %w", call, err)
	}

	if err := ParseJSONObject(text, target); err != nil {
		metrics.RecordReasoningCall(call, metrics.CallBadParse, time.Since(start))
		r.log.Warn("reasoning response could not be parsed",
			zap.String("call", call),
			zap.String("response", logger.TruncateForLog(text, responsePreviewLimit)),
			zap.Error(err))
		return fmt.Errorf("%s response: %w", call, err)
	}

	metrics.RecordReasoningCall(call, metrics.CallOK, time.Since(start))
	return nil
}

// cleanOptional treats the usual spellings of "nothing" in model output as empty.
func cleanOptional(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "null", "none", "n/a", "na", "nil", "无", "-":
		return ""
	}
	return s
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = cleanOptional(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
