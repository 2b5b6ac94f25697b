package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/talakhisi-be/internal/auth"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/isdelr/talakhisi-be/internal/services"
)

// FeedbackHandler handles learner suggestions.
type FeedbackHandler struct {
	service services.FeedbackServiceProvider
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(service services.FeedbackServiceProvider) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// FeedbackPayload is a suggestion from the authenticated account.
type FeedbackPayload struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// StatusPayload changes the handling status of an entry.
type StatusPayload struct {
	Status models.FeedbackStatus `json:"status" validate:"required,oneof=new read archived"`
}

// Submit records a suggestion attributed to the token's identity.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload FeedbackPayload
	if err := decodePayload(r, &payload); err != nil {
		writeError(w, err, "Invalid feedback")
		return
	}
	if strings.TrimSpace(payload.Content) == "" {
		writeError(w, fmt.Errorf("%w: feedback content is empty", services.ErrValidation), "Invalid feedback")
		return
	}
	claims := auth.MustClaims(r.Context())
	entry, err := h.service.Submit(r.Context(), models.FeedbackEntry{
		UserName:  claims.Name,
		UserEmail: claims.Email,
		Content:   payload.Content,
	})
	if err != nil {
		writeError(w, err, "Failed to submit feedback")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// List returns every entry, newest first.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err, "Failed to retrieve feedback")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// SetStatus marks an entry new, read or archived.
func (h *FeedbackHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var payload StatusPayload
	if err := decodePayload(r, &payload); err != nil {
		writeError(w, err, "Invalid feedback status")
		return
	}
	if err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), payload.Status); err != nil {
		writeError(w, err, "Failed to update feedback")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
