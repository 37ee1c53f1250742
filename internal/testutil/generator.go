package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrNoHandler is returned by a StubGenerator without a Handler.
var ErrNoHandler = errors.New("stub generator has no handler")

// StubGenerator answers prompts through Handler and records every prompt it saw.
type StubGenerator struct {
	Handler func(prompt string) (string, error)

	mu    sync.Mutex
	calls []string
}

func (s *StubGenerator) GenerateText(ctx context.Context, prompt string, _ float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.calls = append(s.calls, prompt)
	s.mu.Unlock()

	if s.Handler == nil {
		return "", ErrNoHandler
	}
	return s.Handler(prompt)
}

func (s *StubGenerator) Provider() string { return "stub" }
func (s *StubGenerator) Model() string    { return "stub-model" }

// Calls returns a copy of the prompts received so far.
func (s *StubGenerator) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
