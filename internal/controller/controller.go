package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/talakhisi-be/internal/genai"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/isdelr/talakhisi-be/internal/services"
	"github.com/rs/zerolog/log"
)

// Summarizer turns a lesson into a structured result.
type Summarizer interface {
	Summarize(ctx context.Context, lesson genai.Lesson) (*models.SummarizationResult, error)
}

// Controller drives the application state machine of the local client:
// landing, auth, app and its library and dashboard sub-views.
type Controller struct {
	sessions   services.SessionServiceProvider
	accounts   services.AccountServiceProvider
	summarizer Summarizer
	now        func() time.Time
	newID      func() string

	mu    sync.Mutex
	state State
	// epoch changes whenever the in-flight result would be stale.
	epoch uint64
}

// New creates a controller in the landing view. Call Start to rehydrate.
func New(sessions services.SessionServiceProvider, accounts services.AccountServiceProvider, summarizer Summarizer) *Controller {
	return &Controller{
		sessions:   sessions,
		accounts:   accounts,
		summarizer: summarizer,
		now:        time.Now,
		newID:      shortID,
		state:      Landing(),
	}
}

// Start restores a persisted session: app view when present, landing otherwise.
func (c *Controller) Start(ctx context.Context) (State, error) {
	session, err := c.sessions.Load(ctx)
	if err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Landing()
	if session != nil {
		c.state.User = session
		c.state.View = ViewApp
		log.Info().Str("email", session.Email).Msg("Session restored")
	}
	return c.state.clone(), nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// User returns the logged-in identity or nil.
func (c *Controller) User() *models.Session {
	return c.Snapshot().User
}

// OwnedBy reports whether email may act on the state: either nobody is
// logged in or email is the logged-in account.
func (c *Controller) OwnedBy(email string) bool {
	user := c.User()
	return user == nil || models.NormalizeEmail(user.Email) == models.NormalizeEmail(email)
}

// OpenAuth shows the auth view in the given mode.
func (c *Controller) OpenAuth(mode AuthMode) State {
	if mode != AuthSignup {
		mode = AuthLogin
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.View = ViewAuth
	c.state.AuthMode = mode
	return c.state.clone()
}

// Login authenticates and persists the session. On failure the state is unchanged.
func (c *Controller) Login(ctx context.Context, email, password string) (State, error) {
	session, err := c.accounts.Login(ctx, email, password)
	if err != nil {
		return c.Snapshot(), err
	}
	return c.authenticated(ctx, session)
}

// Signup registers an account and logs it in.
func (c *Controller) Signup(ctx context.Context, name, email, password string) (State, error) {
	session, err := c.accounts.Signup(ctx, name, email, password)
	if err != nil {
		return c.Snapshot(), err
	}
	return c.authenticated(ctx, session)
}

func (c *Controller) authenticated(ctx context.Context, session models.Session) (State, error) {
	if err := c.sessions.Save(ctx, session); err != nil {
		return c.Snapshot(), fmt.Errorf("failed to persist session: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.User = &session
	c.state.View = ViewApp
	c.state.Error = ""
	return c.state.clone(), nil
}

// Logout clears the persisted session and every piece of submission state.
func (c *Controller) Logout(ctx context.Context) (State, error) {
	if err := c.sessions.Clear(ctx); err != nil {
		return c.Snapshot(), err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.state = State{View: ViewLanding, Phase: PhaseIdle, AuthMode: c.state.AuthMode}
	return c.state.clone(), nil
}

// GoHome returns to the app view (landing when logged out) and drops any
// result, error or in-flight submission.
func (c *Controller) GoHome() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.state.View = ViewLanding
	if c.state.User != nil {
		c.state.View = ViewApp
	}
	c.state.Phase = PhaseIdle
	c.state.Result = nil
	c.state.Error = ""
	return c.state.clone()
}

// SetView switches views. App sub-views need a user; the dashboard needs an admin.
func (c *Controller) SetView(view View) (State, error) {
	if !view.Valid() {
		return c.Snapshot(), fmt.Errorf("%w: unknown view %q", services.ErrValidation, view)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch view {
	case ViewApp, ViewLibrary, ViewDashboard:
		if c.state.User == nil {
			return c.state.clone(), ErrAuthRequired
		}
	}
	if view == ViewDashboard && !c.state.User.IsAdmin() {
		return c.state.clone(), ErrForbidden
	}
	c.state.View = view
	return c.state.clone(), nil
}

// SelectLesson opens a saved library item as the current result.
func (c *Controller) SelectLesson(item models.LibraryItem) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.User == nil {
		return c.state.clone(), ErrAuthRequired
	}
	c.epoch++
	c.state.View = ViewApp
	c.state.Phase = PhaseResult
	c.state.Result = &item
	c.state.Error = ""
	return c.state.clone(), nil
}

// ResetResult goes back to the idle input form.
func (c *Controller) ResetResult() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != PhaseProcessing {
		c.state.Phase = PhaseIdle
	}
	c.state.Result = nil
	c.state.Error = ""
	return c.state.clone()
}

// Process validates a submission and summarizes it. Without a user the auth
// view opens in login mode and ErrAuthRequired is returned. A second call while
// one is in flight returns ErrAlreadyProcessing and changes nothing.
//
// Any other failure leaves the app in the error phase with a user-facing
// message and is also returned.
func (c *Controller) Process(ctx context.Context, in Input) (State, error) {
	c.mu.Lock()
	if c.state.Phase == PhaseProcessing {
		defer c.mu.Unlock()
		return c.state.clone(), ErrAlreadyProcessing
	}
	if c.state.User == nil {
		defer c.mu.Unlock()
		c.state.View = ViewAuth
		c.state.AuthMode = AuthLogin
		return c.state.clone(), ErrAuthRequired
	}
	c.epoch++
	epoch := c.epoch
	c.state.View = ViewApp
	c.state.Phase = PhaseProcessing
	c.state.Result = nil
	c.state.Error = ""
	c.mu.Unlock()

	result, err := c.summarize(ctx, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		log.Info().Msg("Discarding stale summarization")
		return c.state.clone(), err
	}
	if err != nil {
		log.Error().Err(err).Msg("Processing failed")
		c.state.Phase = PhaseError
		c.state.Error = userMessage(err)
		return c.state.clone(), err
	}
	c.state.Phase = PhaseResult
	c.state.Result = result
	return c.state.clone(), nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
}

func (c *Controller) summarize(ctx context.Context, in Input) (*models.SummarizationResult, error) {
	lesson, title, err := prepare(in)
	if err != nil {
		return nil, err
	}
	result, err := c.summarizer.Summarize(ctx, lesson)
	if err != nil {
		return nil, err
	}
	result.ID = c.newID()
	result.Title = title
	result.CreatedAt = c.now().UTC().Format(time.RFC3339)
	return result, nil
}
