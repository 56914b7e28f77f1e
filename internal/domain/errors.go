package domain

import (
	"errors"

	"github.com/SamFelix03/cummadashboard/internal/models"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrEmailTaken          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden")
	ErrProfileMissing      = errors.New("profile not found for user")
	ErrFacilityNotBookable = errors.New("facility is not open for booking")
	ErrUnknownRentalPlan   = errors.New("facility has no such rental plan")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrRateLimited         = errors.New("too many attempts, try again later")
	ErrInvalidToken        = errors.New("invalid or expired token")
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Message string
	Fields  models.FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + e.Fields.Error()
}

func NewValidationError(msg string, fields models.FieldErrors) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
