package models

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	ErrUnreadableDocument = eris.New("unreadable document")
	ErrEmptyDocument      = eris.New("no text found in document")
	ErrRecoveryFailed     = eris.New("ocr recovery failed")
	ErrEmbeddingFailed    = eris.New("embedding failed")
	ErrSynthesisFailed    = eris.New("synthesis failed")
	ErrConfiguration      = eris.New("configuration error")
	ErrNoDocument         = eris.New("no document loaded")
	ErrInvalidChunking    = eris.New("invalid chunking parameters")
	ErrEmptyQuery         = eris.New("empty query")
	ErrUnknownMode        = eris.New("unknown answer mode")
)

// StageError reports which pipeline stage failed, the kind of failure
// (one of the sentinels above) and the underlying cause if any.
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewStageError builds a StageError
func NewStageError(stage string, kind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
