// Package errs defines the typed error taxonomy shared across the codec,
// extraction, dispatch, batch, and watcher packages.
package errs

import (
	"fmt"
	"time"
)

// Stage identifies which pipeline stage produced an error.
type Stage string

const (
	StageDecode  Stage = "decode"
	StageExtract Stage = "extract"
	StageProcess Stage = "process"
	StageWatch   Stage = "watch"
)

// DecodeError wraps a failure decoding the binary mail wire format.
type DecodeError struct {
	Stage      Stage
	Offset     int
	Underlying error
	Timestamp  time.Time
}

// NewDecodeError creates a new decode error with context.
func NewDecodeError(offset int, err error) *DecodeError {
	return &DecodeError{
		Stage:      StageDecode,
		Offset:     offset,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed at offset %d: %v", e.Offset, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Underlying
}

// ExtractError wraps a failure running an extractor section.
type ExtractError struct {
	Stage      Stage
	Section    string
	Underlying error
	Timestamp  time.Time
}

// NewExtractError creates a new extract error with context.
func NewExtractError(section string, err error) *ExtractError {
	return &ExtractError{
		Stage:      StageExtract,
		Section:    section,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ExtractError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("extract %s failed: %v", e.Section, e.Underlying)
	}
	return fmt.Sprintf("extract failed: %v", e.Underlying)
}

// Unwrap returns the underlying error.
func (e *ExtractError) Unwrap() error {
	return e.Underlying
}

// ProcessError wraps a failure dispatching or batch-processing a mail file.
type ProcessError struct {
	Stage      Stage
	MailID     string
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewProcessError creates a new process error with context.
func NewProcessError(op, mailID, path string, err error) *ProcessError {
	return &ProcessError{
		Stage:      StageProcess,
		MailID:     mailID,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ProcessError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("process %s failed for %s (mail %s): %v", e.Operation, e.Path, e.MailID, e.Underlying)
	}
	return fmt.Sprintf("process %s failed (mail %s): %v", e.Operation, e.MailID, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *ProcessError) Unwrap() error {
	return e.Underlying
}

// WatchError wraps a failure in the directory watcher's scan, upload, or
// store-persistence path.
type WatchError struct {
	Stage       Stage
	Path        string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewWatchError creates a new watch error with context.
func NewWatchError(op, path string, err error) *WatchError {
	return &WatchError{
		Stage:      StageWatch,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithRecoverable marks the error as retryable.
func (e *WatchError) WithRecoverable(recoverable bool) *WatchError {
	e.Recoverable = recoverable
	return e
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("watch %s failed: %v", e.Operation, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *WatchError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether the watcher should retry the operation.
func (e *WatchError) IsRecoverable() bool {
	return e.Recoverable
}

// MultiError aggregates multiple errors from a batch or fan-out operation.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all wrapped errors, for errors.Is/As traversal.
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// HasErrors reports whether any errors were collected.
func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}
