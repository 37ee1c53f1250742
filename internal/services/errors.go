package services

import (
	"errors"
	"fmt"
)

var (
	ErrNoActivePositions = errors.New("no active positions")
	ErrMalformedInput    = errors.New("malformed input document")
	ErrPersistence       = errors.New("database error")
	ErrNoMatchRecord     = errors.New("candidate has no evaluation for this position")
	ErrPositionExists    = errors.New("position already exists")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrPositionNotFound  = errors.New("position not found")
)

// Stage is a state of the résumé pipeline.
type Stage string

const (
	StageExtracting  Stage = "extracting"
	StageClassifying Stage = "classifying"
	StageEvaluating  Stage = "evaluating"
	StageDeciding    Stage = "deciding"
	StagePersisted   Stage = "persisted"
	StageAborted     Stage = "aborted"
)

// PipelineError is a fatal abort, tagged with the stage the run was in.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline aborted while %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func abort(stage Stage, err error) error {
	return &PipelineError{Stage: stage, Err: err}
}
