package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/isdelr/talakhisi-be/internal/kv"
	"github.com/isdelr/talakhisi-be/internal/models"
)

// LibraryServiceProvider defines the interface for per-account libraries.
type LibraryServiceProvider interface {
	List(ctx context.Context, email string) ([]models.LibraryItem, error)
	ListBySubject(ctx context.Context, email, subject string) ([]models.LibraryItem, error)
	Subjects(ctx context.Context, email string) ([]string, error)
	Contains(ctx context.Context, email, id string) (bool, error)
	Add(ctx context.Context, email string, item models.LibraryItem) (bool, error)
	Remove(ctx context.Context, email, id string) (bool, error)
	Toggle(ctx context.Context, email string, item models.LibraryItem) (bool, error)
	Purge(ctx context.Context, email string) error
	Totals(ctx context.Context) (libraries int, items int, err error)
}

// LibraryService stores each account's saved results under LibraryKey(email),
// newest first.
type LibraryService struct {
	store kv.Store
	mu    sync.Mutex
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(store kv.Store) *LibraryService {
	return &LibraryService{store: store}
}

// List returns the saved items of an account, most recently saved first.
func (s *LibraryService) List(ctx context.Context, email string) ([]models.LibraryItem, error) {
	return loadList[models.LibraryItem](ctx, s.store, LibraryKey(email))
}

// ListBySubject filters the library to one subject. An empty subject returns everything.
func (s *LibraryService) ListBySubject(ctx context.Context, email, subject string) ([]models.LibraryItem, error) {
	items, err := s.List(ctx, email)
	if err != nil || subject == "" {
		return items, err
	}
	filtered := []models.LibraryItem{}
	for _, item := range items {
		if item.Subject == subject {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// Subjects returns the distinct subjects in library order.
func (s *LibraryService) Subjects(ctx context.Context, email string) ([]string, error) {
	items, err := s.List(ctx, email)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	subjects := []string{}
	for _, item := range items {
		if !seen[item.Subject] {
			seen[item.Subject] = true
			subjects = append(subjects, item.Subject)
		}
	}
	return subjects, nil
}

// Contains reports whether the library holds an item with the given id.
func (s *LibraryService) Contains(ctx context.Context, email, id string) (bool, error) {
	items, err := s.List(ctx, email)
	if err != nil {
		return false, err
	}
	return indexOfItem(items, id) >= 0, nil
}

// Add prepends item. It returns false without writing when the id is already saved.
func (s *LibraryService) Add(ctx context.Context, email string, item models.LibraryItem) (bool, error) {
	if item.ID == "" {
		return false, fmt.Errorf("%w: library item needs an id", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.List(ctx, email)
	if err != nil {
		return false, err
	}
	if indexOfItem(items, item.ID) >= 0 {
		return false, nil
	}
	items = append([]models.LibraryItem{item}, items...)
	return true, saveList(ctx, s.store, LibraryKey(email), items)
}

// Remove deletes the item with the given id. It returns false when absent.
func (s *LibraryService) Remove(ctx context.Context, email, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.List(ctx, email)
	if err != nil {
		return false, err
	}
	i := indexOfItem(items, id)
	if i < 0 {
		return false, nil
	}
	items = append(items[:i], items[i+1:]...)
	return true, saveList(ctx, s.store, LibraryKey(email), items)
}

// Toggle removes item when its id is saved and adds it otherwise. It returns
// whether the item is saved afterwards.
func (s *LibraryService) Toggle(ctx context.Context, email string, item models.LibraryItem) (bool, error) {
	saved, err := s.Contains(ctx, email, item.ID)
	if err != nil {
		return false, err
	}
	if saved {
		_, err = s.Remove(ctx, email, item.ID)
		return false, err
	}
	_, err = s.Add(ctx, email, item)
	return err == nil, err
}

// Purge drops the whole library of an account.
func (s *LibraryService) Purge(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, LibraryKey(email))
}

// Totals counts the non-empty libraries and the items saved across all of them.
func (s *LibraryService) Totals(ctx context.Context) (int, int, error) {
	keys, err := s.store.Keys(ctx, LibraryKeyPrefix)
	if err != nil {
		return 0, 0, err
	}
	libraries, items := 0, 0
	for _, key := range keys {
		saved, err := loadList[models.LibraryItem](ctx, s.store, key)
		if err != nil {
			return 0, 0, err
		}
		if len(saved) > 0 {
			libraries++
			items += len(saved)
		}
	}
	return libraries, items, nil
}

func indexOfItem(items []models.LibraryItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
