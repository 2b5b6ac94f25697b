package handlers

import (
	"net/http"

	"github.com/isdelr/talakhisi-be/internal/auth"
	"github.com/isdelr/talakhisi-be/internal/controller"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	app    *controller.Controller
	tokens *auth.Manager
	secure bool
}

// NewAuthHandler creates a new AuthHandler. secure sets the cookie Secure flag.
func NewAuthHandler(app *controller.Controller, tokens *auth.Manager, secure bool) *AuthHandler {
	return &AuthHandler{app: app, tokens: tokens, secure: secure}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// SignupPayload defines the structure for registration requests.
type SignupPayload struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string           `json:"token"`
	User  models.Session   `json:"user"`
	State controller.State `json:"state"`
}

// Signup handles new account registration.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := decodePayload(r, &payload); err != nil {
		writeError(w, err, "Invalid signup request")
		return
	}

	state, err := h.app.Signup(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		writeError(w, err, "Failed to register account")
		return
	}
	h.issue(w, http.StatusCreated, state)
}

// Login handles authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodePayload(r, &payload); err != nil {
		writeError(w, err, "Invalid login request")
		return
	}

	state, err := h.app.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err, "Failed authentication attempt")
		return
	}
	h.issue(w, http.StatusOK, state)
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, state controller.State) {
	token, err := h.tokens.GenerateJWT(*state.User)
	if err != nil {
		log.Error().Err(err).Str("email", state.User.Email).Msg("Failed to generate JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, h.tokens.Cookie(token, h.secure))
	writeJSON(w, status, AuthResponse{Token: token, User: *state.User, State: state})
}

// Logout clears the auth cookie, and the persisted session when it belongs to
// the token's account.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.app.OwnedBy(auth.MustClaims(r.Context()).Email) {
		http.SetCookie(w, h.tokens.Cookie("", h.secure))
		writeJSON(w, http.StatusOK, controller.Landing())
		return
	}
	state, err := h.app.Logout(r.Context())
	if err != nil {
		writeError(w, err, "Failed to log out")
		return
	}
	http.SetCookie(w, h.tokens.Cookie("", h.secure))
	writeJSON(w, http.StatusOK, state)
}

// GetMe returns the identity carried by the token.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.MustClaims(r.Context()).Session())
}
