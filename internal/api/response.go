package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/rs/zerolog"
)

type errorBody struct {
	Error  string             `json:"error"`
	Fields models.FieldErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorBody{Error: message})
}

// writeDomainError maps service errors onto HTTP statuses. Anything not
// recognised is logged and reported as a generic 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Fields: ve.Fields})
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrFacilityNotBookable),
		errors.Is(err, domain.ErrUnknownRentalPlan),
		errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrProfileMissing):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		logger.Error().Err(err).
			Str("request_id", requestIDFrom(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON object body into dst.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("request body is required", models.FieldErrors{"body": "must not be empty"})
		}
		return domain.NewValidationError("invalid JSON body", models.FieldErrors{"body": err.Error()})
	}
	return nil
}

// readBody returns the raw request body for merge-patch style handlers.
func readBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.NewValidationError("request body too large", models.FieldErrors{"body": "too large"})
		}
		return nil, err
	}
	return raw, nil
}
