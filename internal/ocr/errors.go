package ocr

import (
	"fmt"
)

// ErrorCode classifies recognition failures.
type ErrorCode string

const (
	// ErrorResourceUnavailable is fatal: a font, glyph file or image could
	// not be loaded.
	ErrorResourceUnavailable ErrorCode = "RESOURCE_UNAVAILABLE"

	// ErrorDegenerateInput means no ink survived thresholding. The caption
	// is empty.
	ErrorDegenerateInput ErrorCode = "DEGENERATE_INPUT"

	// ErrorBudgetExceeded marks a region whose flood fill ran out of budget.
	// The region is dropped.
	ErrorBudgetExceeded ErrorCode = "BUDGET_EXCEEDED"

	// ErrorNoDictionaryMatch marks a word that kept its best guess after
	// the substitution search gave up.
	ErrorNoDictionaryMatch ErrorCode = "NO_DICTIONARY_MATCH"
)

// Error is a structured recognition error.
type Error struct {
	Code    ErrorCode
	Message string
	RunID   string
	Details map[string]interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrResourceUnavailable = &Error{Code: ErrorResourceUnavailable}
	ErrDegenerateInput     = &Error{Code: ErrorDegenerateInput}
	ErrBudgetExceeded      = &Error{Code: ErrorBudgetExceeded}
	ErrNoDictionaryMatch   = &Error{Code: ErrorNoDictionaryMatch}
)

// Factory functions for common errors

func NewResourceError(resource string, cause error) *Error {
	return &Error{
		Code:    ErrorResourceUnavailable,
		Message: fmt.Sprintf("resource unavailable: %s", resource),
		Details: map[string]interface{}{
			"resource": resource,
		},
		Cause: cause,
	}
}

func NewDegenerateInputError(runID string, width, height int) *Error {
	return &Error{
		Code:    ErrorDegenerateInput,
		Message: fmt.Sprintf("no ink pixels in %dx%d image", width, height),
		RunID:   runID,
		Details: map[string]interface{}{
			"width":  width,
			"height": height,
		},
	}
}

func NewBudgetExceededError(runID string, pixels int, budget int) *Error {
	return &Error{
		Code:    ErrorBudgetExceeded,
		Message: fmt.Sprintf("region discarded after %d pixels, budget %d", pixels, budget),
		RunID:   runID,
		Details: map[string]interface{}{
			"pixels": pixels,
			"budget": budget,
		},
	}
}

func NewNoDictionaryMatchError(runID string, guess string) *Error {
	return &Error{
		Code:    ErrorNoDictionaryMatch,
		Message: fmt.Sprintf("no dictionary word for %q", guess),
		RunID:   runID,
		Details: map[string]interface{}{
			"guess": guess,
		},
	}
}

// ToMap flattens the error for JSON-RPC error data.
func (e *Error) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
	}
	if e.RunID != "" {
		result["run_id"] = e.RunID
	}
	for k, v := range e.Details {
		result[k] = v
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}
	return result
}
