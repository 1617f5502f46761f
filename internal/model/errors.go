package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents API error codes
type ErrorCode int

const (
	// Resource errors (3xxx)
	ErrCodeNotFound ErrorCode = 3001

	// Validation errors (4xxx)
	ErrCodeValidation   ErrorCode = 4001
	ErrCodeInvalidInput ErrorCode = 4002
	ErrCodeRateLimited  ErrorCode = 4029

	// Internal errors (5xxx)
	ErrCodeInternal ErrorCode = 5001
	ErrCodeDatabase ErrorCode = 5002
)

const problemTypeBase = "https://backoffice.forgo.software/errors/"

// ProblemDetails represents RFC 9457 Problem Details for HTTP APIs.
//
// Message and Errors mirror the validation envelope admin clients read:
// a top-level message plus a map of field name to ordered messages.
type ProblemDetails struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Message  string              `json:"message"`
	Errors   map[string][]string `json:"errors,omitempty"`
	// Extension fields
	Code ErrorCode `json:"code,omitempty"`
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON writes the problem details as JSON response
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// GroupFieldErrors folds a list of field errors into the field -> messages
// map used on the wire. Message order within a field is preserved.
func GroupFieldErrors(errs []FieldError) map[string][]string {
	if len(errs) == 0 {
		return nil
	}
	grouped := make(map[string][]string, len(errs))
	for _, e := range errs {
		grouped[e.Field] = append(grouped[e.Field], e.Message)
	}
	return grouped
}

// Constructors. Detail doubles as the top-level message.

func newProblem(slug, title string, status int, detail string, code ErrorCode) *ProblemDetails {
	return &ProblemDetails{
		Type:    problemTypeBase + slug,
		Title:   title,
		Status:  status,
		Detail:  detail,
		Message: detail,
		Code:    code,
	}
}

func NewNotFoundError(resource string) *ProblemDetails {
	return newProblem("not-found", "Not Found", http.StatusNotFound,
		fmt.Sprintf("%s not found", resource), ErrCodeNotFound)
}

func NewValidationError(errors []FieldError) *ProblemDetails {
	// Build summary message from field errors
	detail := "One or more fields failed validation"
	if len(errors) > 0 {
		detail = errors[0].Message
		if len(errors) > 1 {
			detail = fmt.Sprintf("%s (and %d more errors)", detail, len(errors)-1)
		}
	}
	pd := newProblem("validation", "Validation Error", http.StatusUnprocessableEntity, detail, ErrCodeValidation)
	pd.Errors = GroupFieldErrors(errors)
	return pd
}

func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return newProblem("internal", "Internal Server Error", http.StatusInternalServerError, detail, ErrCodeInternal)
}

func NewServiceUnavailableError(detail string) *ProblemDetails {
	return newProblem("unavailable", "Service Unavailable", http.StatusServiceUnavailable, detail, ErrCodeDatabase)
}

func NewBadRequestError(detail string) *ProblemDetails {
	return newProblem("bad-request", "Bad Request", http.StatusBadRequest, detail, ErrCodeInvalidInput)
}

func NewRateLimitError(retryAfter int) *ProblemDetails {
	return newProblem("rate-limited", "Too Many Requests", http.StatusTooManyRequests,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter), ErrCodeRateLimited)
}

func NewForbiddenError(detail string) *ProblemDetails {
	return newProblem("forbidden", "Forbidden", http.StatusForbidden, detail, 0)
}
