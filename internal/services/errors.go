package services

import (
	"errors"
	"fmt"
	"strings"

	"verso/internal/queue"
)

var (
	ErrExternalService = errors.New("external service error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("timeout")
	ErrTransient       = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a stage error to the terminal queue status the workflow
// manager persists after the stage fails. Every stage failure is terminal;
// the distinction between validation, timeout, and unexpected causes lives in
// the recorded message and the logs, not the status column.
func FailureStatus(err error) queue.Status {
	_ = err
	return queue.StatusFailed
}

// IsSemanticFailure reports whether the error represents a validation outcome
// of the document itself (empty content, oversized content). No index data
// was written for these, so the compensating delete must not run.
func IsSemanticFailure(err error) bool {
	return errors.Is(err, ErrValidation)
}

// SanitizedMessage produces the operator-facing message persisted to the
// store. Validation and timeout failures keep their descriptive text;
// unexpected failures collapse to a generic message so internal detail stays
// in the logs only.
func SanitizedMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return firstLine(err.Error())
	case errors.Is(err, ErrTimeout):
		return "processing timeout: " + firstLine(err.Error())
	default:
		return "internal processing error"
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
