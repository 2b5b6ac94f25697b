package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/talakhisi-be/internal/kv"
	"github.com/isdelr/talakhisi-be/internal/models"
)

// FeedbackServiceProvider defines the interface for feedback services.
type FeedbackServiceProvider interface {
	Submit(ctx context.Context, entry models.FeedbackEntry) (models.FeedbackEntry, error)
	List(ctx context.Context) ([]models.FeedbackEntry, error)
	SetStatus(ctx context.Context, id string, status models.FeedbackStatus) error
	Prune(ctx context.Context, max int) (int, error)
}

// FeedbackService keeps suggestions newest first. It does not validate
// content or authorship; callers do.
type FeedbackService struct {
	store kv.Store
	now   func() time.Time
	mu    sync.Mutex
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(store kv.Store) *FeedbackService {
	return &FeedbackService{store: store, now: utcNow}
}

// Submit prepends entry, filling in id, date and status when missing.
func (s *FeedbackService) Submit(ctx context.Context, entry models.FeedbackEntry) (models.FeedbackEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Date == "" {
		entry.Date = s.now().Format(displayTimeLayout)
	}
	if entry.Status == "" {
		entry.Status = models.FeedbackNew
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadList[models.FeedbackEntry](ctx, s.store, FeedbackKey)
	if err != nil {
		return models.FeedbackEntry{}, err
	}
	entries = append([]models.FeedbackEntry{entry}, entries...)
	if err := saveList(ctx, s.store, FeedbackKey, entries); err != nil {
		return models.FeedbackEntry{}, err
	}
	return entry, nil
}

// List returns all entries, newest first.
func (s *FeedbackService) List(ctx context.Context) ([]models.FeedbackEntry, error) {
	return loadList[models.FeedbackEntry](ctx, s.store, FeedbackKey)
}

// SetStatus changes the status of one entry; nothing else about an entry is mutable.
func (s *FeedbackService) SetStatus(ctx context.Context, id string, status models.FeedbackStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown feedback status %q", ErrValidation, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadList[models.FeedbackEntry](ctx, s.store, FeedbackKey)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Status = status
			return saveList(ctx, s.store, FeedbackKey, entries)
		}
	}
	return fmt.Errorf("feedback %s: %w", id, ErrNotFound)
}

// Prune keeps the newest max entries and returns how many were dropped.
// A non-positive max disables pruning.
func (s *FeedbackService) Prune(ctx context.Context, max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadList[models.FeedbackEntry](ctx, s.store, FeedbackKey)
	if err != nil || len(entries) <= max {
		return 0, err
	}
	dropped := len(entries) - max
	return dropped, saveList(ctx, s.store, FeedbackKey, entries[:max])
}
