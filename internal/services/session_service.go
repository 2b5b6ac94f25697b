package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/isdelr/talakhisi-be/internal/kv"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/rs/zerolog/log"
)

// SessionServiceProvider defines the interface for the persisted session.
type SessionServiceProvider interface {
	Save(ctx context.Context, session models.Session) error
	Load(ctx context.Context) (*models.Session, error)
	Clear(ctx context.Context) error
}

// SessionService persists the identity of the logged-in user across restarts.
// There is no expiry or signature: whoever can read the store is trusted.
type SessionService struct {
	store kv.Store
}

// NewSessionService creates a new SessionService.
func NewSessionService(store kv.Store) *SessionService {
	return &SessionService{store: store}
}

// Save overwrites the persisted session.
func (s *SessionService) Save(ctx context.Context, session models.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.store.Set(ctx, SessionKey, raw)
}

// Load returns the persisted session, or nil when there is none. A record that
// fails to parse is purged and reported as no session. Only store I/O errors
// are returned.
func (s *SessionService) Load(ctx context.Context) (*models.Session, error) {
	raw, err := s.store.Get(ctx, SessionKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil || session.Email == "" {
		log.Warn().Err(err).Msg("Purging corrupt persisted session")
		if delErr := s.store.Delete(ctx, SessionKey); delErr != nil {
			log.Error().Err(delErr).Msg("Failed to purge corrupt session")
		}
		return nil, nil
	}
	if !session.Role.Valid() {
		session.Role = models.RoleUser
	}
	return &session, nil
}

// Clear removes the persisted session.
func (s *SessionService) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, SessionKey)
}
