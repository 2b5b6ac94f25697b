package controller

import (
	"errors"
	"strings"

	"github.com/isdelr/talakhisi-be/internal/genai"
)

var (
	// ErrAuthRequired is returned when an action needs a logged-in user.
	ErrAuthRequired = errors.New("authentication required")
	// ErrAlreadyProcessing is returned when a submission is already in flight.
	ErrAlreadyProcessing = errors.New("a submission is already processing")
	// ErrForbidden is returned when the user lacks the role for a view.
	ErrForbidden = errors.New("forbidden")
)

// userMessage maps a failed submission to the text shown to the user.
func userMessage(err error) string {
	var inErr *inputError
	switch {
	case errors.As(err, &inErr):
		return inErr.msg
	case errors.Is(err, genai.ErrCredentialMissing):
		return MsgCredentialMissing
	case errors.Is(err, genai.ErrCredentialInvalid), strings.Contains(err.Error(), "400"):
		return MsgCredentialRejected
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgUnexpected
}
