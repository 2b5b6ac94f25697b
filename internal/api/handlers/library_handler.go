package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/talakhisi-be/internal/auth"
	"github.com/isdelr/talakhisi-be/internal/controller"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/isdelr/talakhisi-be/internal/services"
	"github.com/rs/zerolog/log"
)

// LibraryHandler handles the saved lessons of the authenticated account.
type LibraryHandler struct {
	service services.LibraryServiceProvider
	app     *controller.Controller
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(service services.LibraryServiceProvider, app *controller.Controller) *LibraryHandler {
	return &LibraryHandler{service: service, app: app}
}

// SavedResponse reports whether an item is in the library after a change.
type SavedResponse struct {
	ID    string `json:"id"`
	Saved bool   `json:"saved"`
}

// List returns the library, optionally filtered with ?subject=.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	email := auth.MustClaims(r.Context()).Email
	items, err := h.service.ListBySubject(r.Context(), email, r.URL.Query().Get("subject"))
	if err != nil {
		writeError(w, err, "Failed to retrieve library")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Subjects returns the distinct subjects in the library.
func (h *LibraryHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	email := auth.MustClaims(r.Context()).Email
	subjects, err := h.service.Subjects(r.Context(), email)
	if err != nil {
		writeError(w, err, "Failed to retrieve subjects")
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

// Add saves an item. Saving an id that is already present changes nothing.
func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var item models.LibraryItem
	if err := decodePayload(r, &item); err != nil {
		writeError(w, err, "Invalid library item")
		return
	}
	email := auth.MustClaims(r.Context()).Email
	added, err := h.service.Add(r.Context(), email, item)
	if err != nil {
		writeError(w, err, "Failed to save library item")
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
		log.Info().Str("email", email).Str("item_id", item.ID).Msg("Library item saved")
	}
	writeJSON(w, status, SavedResponse{ID: item.ID, Saved: true})
}

// Toggle removes the item when saved and saves it otherwise.
func (h *LibraryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var item models.LibraryItem
	if err := decodePayload(r, &item); err != nil {
		writeError(w, err, "Invalid library item")
		return
	}
	saved, err := h.service.Toggle(r.Context(), auth.MustClaims(r.Context()).Email, item)
	if err != nil {
		writeError(w, err, "Failed to toggle library item")
		return
	}
	writeJSON(w, http.StatusOK, SavedResponse{ID: item.ID, Saved: saved})
}

// Delete removes an item by id.
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := h.service.Remove(r.Context(), auth.MustClaims(r.Context()).Email, id)
	if err != nil {
		writeError(w, err, "Failed to delete library item")
		return
	}
	if !removed {
		http.Error(w, "Library item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Open shows a saved item as the current result.
func (h *LibraryHandler) Open(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	items, err := h.service.List(r.Context(), auth.MustClaims(r.Context()).Email)
	if err != nil {
		writeError(w, err, "Failed to retrieve library")
		return
	}
	for _, item := range items {
		if item.ID == id {
			state, err := h.app.SelectLesson(item)
			if err != nil {
				writeJSON(w, statusFor(err), state)
				return
			}
			writeJSON(w, http.StatusOK, state)
			return
		}
	}
	http.Error(w, "Library item not found", http.StatusNotFound)
}
