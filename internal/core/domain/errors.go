package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction: the uploaded bytes could not be parsed as the
	// declared format, or yielded no text. Terminal, never retried.
	ErrExtraction = errors.New("document extraction failed")

	// ErrValidation: empty or invalid caller input.
	ErrValidation = errors.New("invalid input")

	// ErrClassification: model artifacts missing or unusable. Fatal at
	// process start; per-request recurrence is a deployment defect.
	ErrClassification = errors.New("classifier unavailable")

	// ErrNoRequirements: segmentation and filtering produced zero
	// candidates. A designed outcome, surfaced distinctly so callers
	// can render "no requirements detected" instead of a failure.
	ErrNoRequirements = errors.New("no requirement statements found")

	ErrNotFound  = errors.New("not found")
	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
