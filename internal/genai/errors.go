package genai

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCredentialMissing is returned before any request when no API key is configured.
	ErrCredentialMissing = errors.New("API_KEY_MISSING")
	// ErrCredentialInvalid is returned when the backend rejects the API key.
	ErrCredentialInvalid = errors.New("API_KEY_INVALID")
	// ErrMalformedResponse is returned when the model output holds no usable JSON object.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrEmptyResponse is returned when the backend answers without any candidate content.
	ErrEmptyResponse = errors.New("empty model response")
)

// APIError is an error envelope returned by the Gemini REST API.
type APIError struct {
	Status  int    `json:"code"`
	Code    string `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: %d %s: %s", e.Status, e.Code, e.Message)
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// classify maps a rejected key onto ErrCredentialInvalid and keeps every other
// API error as is.
func classify(apiErr *APIError) error {
	if strings.Contains(apiErr.Message, "API key not valid") || apiErr.Code == "INVALID_ARGUMENT" {
		return fmt.Errorf("%w: %s", ErrCredentialInvalid, apiErr.Message)
	}
	return apiErr
}
