package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/talakhisi-be/internal/auth"
	"github.com/isdelr/talakhisi-be/internal/services"
)

// AdministrationSender is the author shown on administrator messages.
const AdministrationSender = "Administration"

// MessageHandler handles administrator messages.
type MessageHandler struct {
	service services.MessageServiceProvider
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service services.MessageServiceProvider) *MessageHandler {
	return &MessageHandler{service: service}
}

// MessagePayload addresses a message to an email or to "all".
type MessagePayload struct {
	To      string `json:"to" validate:"required,max=254"`
	Content string `json:"content" validate:"required,max=5000"`
}

// Inbox returns the messages visible to the authenticated account.
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListFor(r.Context(), auth.MustClaims(r.Context()).Email)
	if err != nil {
		writeError(w, err, "Failed to retrieve messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// List returns every message, newest first.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err, "Failed to retrieve messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// Send records a message. Whitespace-only content is accepted and ignored.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var payload MessagePayload
	if err := decodePayload(r, &payload); err != nil {
		writeError(w, err, "Invalid message")
		return
	}
	msg, err := h.service.Send(r.Context(), AdministrationSender, payload.To, payload.Content)
	if err != nil {
		writeError(w, err, "Failed to send message")
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// Delete removes a message.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "Failed to delete message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
