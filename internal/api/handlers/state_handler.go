package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/isdelr/talakhisi-be/internal/auth"
	"github.com/isdelr/talakhisi-be/internal/controller"
	"github.com/isdelr/talakhisi-be/internal/services"
	"github.com/rs/zerolog/log"
)

// multipartOverhead is the room left for form fields around an upload.
const multipartOverhead = 1 << 20

// StateHandler exposes the application state machine.
type StateHandler struct {
	app *controller.Controller
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(app *controller.Controller) *StateHandler {
	return &StateHandler{app: app}
}

// ViewPayload selects a view; AuthMode applies to the auth view.
type ViewPayload struct {
	View     controller.View     `json:"view" validate:"required,oneof=landing auth app library dashboard"`
	AuthMode controller.AuthMode `json:"authMode" validate:"omitempty,oneof=login signup"`
}

// ProcessPayload is the JSON form of a text submission.
type ProcessPayload struct {
	Text string `json:"text"`
}

// RequireOwner rejects tokens of any account other than the one logged in to
// the application. It must run after JWTMiddleware.
func (h *StateHandler) RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.MustClaims(r.Context())
		if !h.app.OwnedBy(claims.Email) {
			log.Warn().Str("email", claims.Email).Str("path", r.URL.Path).Msg("State access by another account")
			http.Error(w, "Application is in use by another account", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Get returns the current state.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Snapshot())
}

// SetView switches views.
func (h *StateHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var payload ViewPayload
	if err := decodePayload(r, &payload); err != nil {
		writeError(w, err, "Invalid view request")
		return
	}
	if payload.View == controller.ViewAuth {
		writeJSON(w, http.StatusOK, h.app.OpenAuth(payload.AuthMode))
		return
	}
	state, err := h.app.SetView(payload.View)
	if err != nil {
		writeJSON(w, statusFor(err), state)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Home returns to the home view.
func (h *StateHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.GoHome())
}

// Reset clears the current result.
func (h *StateHandler) Reset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.ResetResult())
}

// Process submits a lesson as JSON text or as a multipart "file" upload. The
// resulting state is returned on success and failure alike.
func (h *StateHandler) Process(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(w, r)
	if err != nil {
		writeError(w, err, "Invalid process request")
		return
	}

	state, err := h.app.Process(r.Context(), in)
	if err != nil {
		writeJSON(w, statusFor(err), state)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func readInput(w http.ResponseWriter, r *http.Request) (controller.Input, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var payload ProcessPayload
		if err := decodePayload(r, &payload); err != nil {
			return controller.Input{}, err
		}
		return controller.Input{Text: payload.Text}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, controller.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return controller.Input{}, fmt.Errorf("%w: %s", services.ErrValidation, controller.MsgFileTooLarge)
		}
		return controller.Input{}, fmt.Errorf("%w: invalid multipart form", services.ErrValidation)
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return controller.Input{File: &controller.File{}}, nil
	}
	if err != nil {
		return controller.Input{}, fmt.Errorf("%w: unreadable file", services.ErrValidation)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, controller.MaxFileSize+1))
	if err != nil {
		return controller.Input{}, fmt.Errorf("failed to read upload: %w", err)
	}
	return controller.Input{File: &controller.File{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}}, nil
}
