package service

import (
	"errors"
	"strings"

	"github.com/forgo/backoffice/api/internal/model"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Resource Errors =====
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrUserNotFound     = errors.New("user not found")
)

// ===== Validation Errors =====
var (
	ErrValidation = errors.New("validation failed")
	ErrEmailTaken = errors.New("email already taken")
)

// ===== Seeding Errors =====
var (
	ErrSeedDisabled     = errors.New("seeding is disabled")
	ErrSeedCountInvalid = errors.New("seed count out of range")
)

// ValidationError carries the field errors of a rejected input.
// errors.Is matches ErrValidation and, when set, the Cause.
type ValidationError struct {
	Errors []model.FieldError
	Cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// newValidationError returns nil when there is nothing to report
func newValidationError(errs []model.FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// emailTakenError is the field error reported for a duplicate email
func emailTakenError(others ...model.FieldError) *ValidationError {
	return &ValidationError{
		Errors: append(others, model.FieldError{Field: "email", Message: model.MsgEmailTaken}),
		Cause:  ErrEmailTaken,
	}
}
