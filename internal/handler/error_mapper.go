package handler

import (
	"errors"
	"log/slog"

	"github.com/forgo/backoffice/api/internal/database"
	"github.com/forgo/backoffice/api/internal/model"
	"github.com/forgo/backoffice/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// ===== Validation Errors → 422 =====
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return model.NewValidationError(verr.Errors)
	}

	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrCustomerNotFound):
		return model.NewNotFoundError("Customer")
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("User")

	// ===== Seeding → 403 / 422 =====
	case errors.Is(err, service.ErrSeedDisabled):
		return model.NewForbiddenError(err.Error())
	case errors.Is(err, service.ErrSeedCountInvalid):
		return model.NewValidationError([]model.FieldError{{Field: "count", Message: err.Error()}})

	// ===== Storage Errors → 503 =====
	case errors.Is(err, database.ErrConnection):
		return model.NewServiceUnavailableError("Database unavailable")

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed. Unexpected errors
// are logged since their detail is withheld from the client.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status >= 500 {
		slog.Error(operation+" failed", slog.String("error", err.Error()))
		if pd.Status == 500 {
			pd.Detail = operation + ": an unexpected error occurred"
			pd.Message = pd.Detail
		}
	}
	return pd
}
