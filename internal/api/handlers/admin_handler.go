package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/isdelr/talakhisi-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AdminHandler handles account management and dashboard statistics.
type AdminHandler struct {
	accounts  services.AccountServiceProvider
	dashboard services.DashboardServiceProvider
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accounts services.AccountServiceProvider, dashboard services.DashboardServiceProvider) *AdminHandler {
	return &AdminHandler{accounts: accounts, dashboard: dashboard}
}

// RolePayload sets a role explicitly; an empty body toggles it.
type RolePayload struct {
	Role models.Role `json:"role" validate:"omitempty,oneof=admin user"`
}

// RoleResponse reports the role after a change.
type RoleResponse struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if email, err := url.PathUnescape(raw); err == nil {
		return email
	}
	return raw
}

// ListAccounts returns every account without credentials.
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err, "Failed to retrieve accounts")
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// DeleteAccount removes an account and its library.
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	if err := h.accounts.DeleteAccount(r.Context(), email); err != nil {
		writeError(w, err, "Failed to delete account")
		return
	}
	log.Info().Str("email", email).Msg("Account deleted")
	w.WriteHeader(http.StatusNoContent)
}

// SetRole sets or toggles the role of an account.
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var payload RolePayload
	if r.ContentLength != 0 {
		if err := decodePayload(r, &payload); err != nil {
			writeError(w, err, "Invalid role request")
			return
		}
	}

	email := emailParam(r)
	role := payload.Role
	var err error
	if role == "" {
		role, err = h.accounts.ToggleRole(r.Context(), email)
	} else {
		err = h.accounts.SetRole(r.Context(), email, role)
		if err == nil {
			var account models.Account
			if account, err = h.accounts.GetAccount(r.Context(), email); err == nil {
				role = account.Role
			}
		}
	}
	if err != nil {
		writeError(w, err, "Failed to change role")
		return
	}
	writeJSON(w, http.StatusOK, RoleResponse{Email: models.NormalizeEmail(email), Role: role})
}

// Stats returns the dashboard counters.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.GetStatistics(r.Context())
	if err != nil {
		writeError(w, err, "Failed to compute statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
