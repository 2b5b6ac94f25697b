package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/isdelr/talakhisi-be/internal/controller"
	"github.com/isdelr/talakhisi-be/internal/genai"
	"github.com/isdelr/talakhisi-be/internal/services"
	"github.com/rs/zerolog/log"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodePayload reads a JSON body into dst and validates its struct tags.
func decodePayload(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: invalid fields: %s", services.ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var apiErr *genai.APIError
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDuplicateAccount), errors.Is(err, controller.ErrAlreadyProcessing):
		return http.StatusConflict
	case errors.Is(err, services.ErrProtectedAccount), errors.Is(err, controller.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, controller.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, genai.ErrCredentialMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, genai.ErrCredentialInvalid), errors.Is(err, genai.ErrMalformedResponse),
		errors.Is(err, genai.ErrEmptyResponse), errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError answers with the status of err. Server errors are logged and
// their detail hidden.
func writeError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		log.Error().Err(err).Msg(msg)
		http.Error(w, msg, status)
		return
	}
	log.Warn().Err(err).Int("status", status).Msg(msg)
	http.Error(w, err.Error(), status)
}
