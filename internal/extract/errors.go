// Package extract provides the extractor SDK used by mail kind packages to
// pull typed sections out of a decoded mail's lossy codec.Value tree.
package extract

import "fmt"

// ExtractError is returned by an Extractor when it cannot read the fields it
// needs from the decoded input.
type ExtractError struct {
	Kind     ExtractErrorKind
	Field    string
	Expected string
}

// ExtractErrorKind distinguishes the ways an extractor can fail.
type ExtractErrorKind int

const (
	// NotObject means the input value was not an object where one was required.
	NotObject ExtractErrorKind = iota
	// MissingField means a required field was absent from the object.
	MissingField
	// InvalidFieldType means a field was present but held the wrong shape.
	InvalidFieldType
)

func (e *ExtractError) Error() string {
	switch e.Kind {
	case NotObject:
		return "extract: value is not an object"
	case MissingField:
		return fmt.Sprintf("extract: missing field %q", e.Field)
	case InvalidFieldType:
		return fmt.Sprintf("extract: field %q is not a %s", e.Field, e.Expected)
	default:
		return "extract: unknown error"
	}
}

func errNotObject() error {
	return &ExtractError{Kind: NotObject}
}

func errMissingField(field string) error {
	return &ExtractError{Kind: MissingField, Field: field}
}

func errInvalidFieldType(field, expected string) error {
	return &ExtractError{Kind: InvalidFieldType, Field: field, Expected: expected}
}

// ProcessError is returned by a Processor when running its extractors fails.
type ProcessError struct {
	Kind    ProcessErrorKind
	Section string
	Err     error
}

// ProcessErrorKind distinguishes the ways a Processor run can fail.
type ProcessErrorKind int

const (
	// ExtractorFailed means a named extractor returned an ExtractError.
	ExtractorFailed ProcessErrorKind = iota
	// DuplicateSection means two extractors claimed the same section name.
	DuplicateSection
	// ExtractorPanicked means a named extractor panicked during RunParallel.
	ExtractorPanicked
	// EmptySections means the mail payload had no sections to process.
	EmptySections
)

func (e *ProcessError) Error() string {
	switch e.Kind {
	case ExtractorFailed:
		return fmt.Sprintf("process: extractor %q failed: %v", e.Section, e.Err)
	case DuplicateSection:
		return fmt.Sprintf("process: duplicate section %q", e.Section)
	case ExtractorPanicked:
		return fmt.Sprintf("process: extractor %q panicked: %v", e.Section, e.Err)
	case EmptySections:
		return "process: mail payload has no sections"
	default:
		return "process: unknown error"
	}
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

func errExtractorFailed(section string, err error) error {
	return &ProcessError{Kind: ExtractorFailed, Section: section, Err: err}
}

func errDuplicateSection(section string) error {
	return &ProcessError{Kind: DuplicateSection, Section: section}
}

func errExtractorPanicked(section string, recovered interface{}) error {
	return &ProcessError{Kind: ExtractorPanicked, Section: section, Err: fmt.Errorf("%v", recovered)}
}

// ErrEmptySections is returned by kind packages when a mail has no sections
// at all to process. It is the Go counterpart of the duelbattle2
// ProcessError::EmptySections variant.
var ErrEmptySections = &ProcessError{Kind: EmptySections}
