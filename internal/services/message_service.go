package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/talakhisi-be/internal/kv"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/rs/zerolog/log"
)

// MessageServiceProvider defines the interface for administrator messages.
type MessageServiceProvider interface {
	Send(ctx context.Context, from, to, content string) (*models.AppMessage, error)
	List(ctx context.Context) ([]models.AppMessage, error)
	ListFor(ctx context.Context, email string) ([]models.AppMessage, error)
	Delete(ctx context.Context, id string) error
	Prune(ctx context.Context, max int) (int, error)
}

// MessageNotifier is told about every message after it has been persisted.
type MessageNotifier interface {
	NotifyMessage(msg models.AppMessage)
}

// MessageService keeps administrator messages newest first. Who may send or
// delete is decided by callers.
type MessageService struct {
	store    kv.Store
	notifier MessageNotifier
	now      func() time.Time
	mu       sync.Mutex
}

// NewMessageService creates a new MessageService. notifier may be nil.
func NewMessageService(store kv.Store, notifier MessageNotifier) *MessageService {
	return &MessageService{store: store, notifier: notifier, now: utcNow}
}

// Send prepends a new message. Empty content is ignored and yields (nil, nil).
// The type is fixed here from the recipient: "all" is a broadcast.
func (s *MessageService) Send(ctx context.Context, from, to, content string) (*models.AppMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	to = strings.TrimSpace(to)
	if to != models.BroadcastTarget {
		to = models.NormalizeEmail(to)
	}

	msg := models.AppMessage{
		ID:      uuid.New().String(),
		From:    from,
		To:      to,
		Content: content,
		Date:    s.now().Format(displayTimeLayout),
		Type:    models.MessageTypeFor(to),
	}

	s.mu.Lock()
	messages, err := loadList[models.AppMessage](ctx, s.store, MessagesKey)
	if err == nil {
		messages = append([]models.AppMessage{msg}, messages...)
		err = saveList(ctx, s.store, MessagesKey, messages)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	log.Info().Str("message_id", msg.ID).Str("to", msg.To).Str("type", string(msg.Type)).Msg("Message sent")
	if s.notifier != nil {
		s.notifier.NotifyMessage(msg)
	}
	return &msg, nil
}

// List returns all messages, newest first.
func (s *MessageService) List(ctx context.Context) ([]models.AppMessage, error) {
	return loadList[models.AppMessage](ctx, s.store, MessagesKey)
}

// ListFor returns the broadcasts plus the private messages addressed to email.
func (s *MessageService) ListFor(ctx context.Context, email string) ([]models.AppMessage, error) {
	messages, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	inbox := []models.AppMessage{}
	for _, m := range messages {
		if m.IsFor(email) {
			inbox = append(inbox, m)
		}
	}
	return inbox, nil
}

// Delete removes a message by id.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := loadList[models.AppMessage](ctx, s.store, MessagesKey)
	if err != nil {
		return err
	}
	for i := range messages {
		if messages[i].ID == id {
			messages = append(messages[:i], messages[i+1:]...)
			return saveList(ctx, s.store, MessagesKey, messages)
		}
	}
	return fmt.Errorf("message %s: %w", id, ErrNotFound)
}

// Prune keeps the newest max messages and returns how many were dropped.
func (s *MessageService) Prune(ctx context.Context, max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := loadList[models.AppMessage](ctx, s.store, MessagesKey)
	if err != nil || len(messages) <= max {
		return 0, err
	}
	dropped := len(messages) - max
	return dropped, saveList(ctx, s.store, MessagesKey, messages[:max])
}
