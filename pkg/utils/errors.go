package utils

import (
	"errors"
	"fmt"
)

// Error codes. Each maps to one HTTP status, see StatusFor.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeUnavailable       = "SERVICE_UNAVAILABLE"
	ErrCodeBudgetExceeded    = "BUDGET_EXCEEDED"
	ErrCodeInvalidSelection  = "INVALID_SELECTION"
	ErrCodeInvalidFilterSpec = "INVALID_FILTER_SPEC"
)

// AppError is the error body of a failed response. Cause keeps the domain
// error it was built from and is never serialized.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

func NewAppError(code, message string, details ...string) *AppError {
	e := &AppError{Code: code, Message: message}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// Wrap classifies cause under code. Details carry the cause's text.
func Wrap(code, message string, cause error) *AppError {
	e := &AppError{Code: code, Message: message, Cause: cause}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Status is the HTTP status the error is sent with.
func (e *AppError) Status() int { return StatusFor(e.Code) }

// Rule classifies every error matching one of Targets.
type Rule struct {
	Targets []error
	Code    string
	Message string
	// Quiet leaves the cause's text out of Details.
	Quiet bool
}

// Classifier turns domain errors into AppErrors, first matching rule wins.
type Classifier []Rule

// Classify returns err as an AppError. An error that already is one passes
// through; anything unmatched becomes INTERNAL_ERROR with no details.
func (cl Classifier) Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, r := range cl {
		for _, target := range r.Targets {
			if !errors.Is(err, target) {
				continue
			}
			if r.Quiet {
				return &AppError{Code: r.Code, Message: r.Message, Cause: err}
			}
			return Wrap(r.Code, r.Message, err)
		}
	}
	return &AppError{Code: ErrCodeInternal, Message: "Internal server error", Cause: err}
}
