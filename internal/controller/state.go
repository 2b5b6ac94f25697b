package controller

import "github.com/isdelr/talakhisi-be/internal/models"

// View is the screen the application shows.
type View string

const (
	ViewLanding   View = "landing"
	ViewAuth      View = "auth"
	ViewApp       View = "app"
	ViewLibrary   View = "library"
	ViewDashboard View = "dashboard"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	switch v {
	case ViewLanding, ViewAuth, ViewApp, ViewLibrary, ViewDashboard:
		return true
	}
	return false
}

// Phase is the progress of a submission inside the app view.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseProcessing Phase = "processing"
	PhaseResult     Phase = "result"
	PhaseError      Phase = "error"
)

// AuthMode selects the form shown by the auth view.
type AuthMode string

const (
	AuthLogin  AuthMode = "login"
	AuthSignup AuthMode = "signup"
)

// State is a snapshot of the application.
type State struct {
	View     View                        `json:"view"`
	Phase    Phase                       `json:"phase"`
	AuthMode AuthMode                    `json:"authMode"`
	User     *models.Session             `json:"user"`
	Result   *models.SummarizationResult `json:"result"`
	Error    string                      `json:"error,omitempty"`
}

// Landing is the state of a logged-out application.
func Landing() State {
	return State{View: ViewLanding, Phase: PhaseIdle, AuthMode: AuthLogin}
}

// IsProcessing reports whether a submission is in flight.
func (s State) IsProcessing() bool {
	return s.Phase == PhaseProcessing
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	if s.Result != nil {
		r := *s.Result
		s.Result = &r
	}
	return s
}
