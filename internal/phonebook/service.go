// Package phonebook implements owner-scoped CRUD on phonebook entries.
package phonebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/crucial707/phonebook/internal/models"
	"github.com/crucial707/phonebook/internal/repo"
)

var (
	// ErrNotFound covers both a missing entry and an entry owned by someone else.
	ErrNotFound     = errors.New("phonebook entry not found")
	ErrInvalidEntry = errors.New("name and phonenumber are required")
)

// EntryStore is the record store the service depends on. repo.EntryRepo and
// repo.MemoryEntryRepo implement it.
type EntryStore interface {
	Create(ctx context.Context, e models.Entry) (models.Entry, error)
	ListByOwner(ctx context.Context, owner string) ([]models.Entry, error)
	GetByIDAndOwner(ctx context.Context, id, owner string) (models.Entry, error)
	UpdateByIDAndOwner(ctx context.Context, id, owner, name, phone string) (models.Entry, error)
	DeleteByIDAndOwner(ctx context.Context, id, owner string) error
}

type Service struct {
	store EntryStore
	newID func() string
}

func New(store EntryStore) *Service {
	return &Service{store: store, newID: uuid.NewString}
}

// Create stores a new entry owned by user. The id is assigned here.
func (s *Service) Create(ctx context.Context, name, phone string, user models.User) (models.Entry, error) {
	if name == "" || phone == "" {
		return models.Entry{}, ErrInvalidEntry
	}
	entry, err := s.store.Create(ctx, models.Entry{
		ID:          s.newID(),
		UserID:      user.Email,
		Name:        name,
		PhoneNumber: phone,
	})
	if err != nil {
		return models.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	return entry, nil
}

// List returns every entry owned by user. Order is whatever the store yields.
func (s *Service) List(ctx context.Context, user models.User) ([]models.Entry, error) {
	entries, err := s.store.ListByOwner(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

func (s *Service) Get(ctx context.Context, id string, user models.User) (models.Entry, error) {
	if !validID(id) {
		return models.Entry{}, ErrNotFound
	}
	entry, err := s.store.GetByIDAndOwner(ctx, id, user.Email)
	if err != nil {
		return models.Entry{}, mapStoreErr("get entry", err)
	}
	return entry, nil
}

// Update replaces name and phone. The owner never changes.
func (s *Service) Update(ctx context.Context, id, name, phone string, user models.User) (models.Entry, error) {
	if !validID(id) {
		return models.Entry{}, ErrNotFound
	}
	if name == "" || phone == "" {
		return models.Entry{}, ErrInvalidEntry
	}
	entry, err := s.store.UpdateByIDAndOwner(ctx, id, user.Email, name, phone)
	if err != nil {
		return models.Entry{}, mapStoreErr("update entry", err)
	}
	return entry, nil
}

// Delete removes the entry. Deleting the same id twice returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string, user models.User) error {
	if !validID(id) {
		return ErrNotFound
	}
	if err := s.store.DeleteByIDAndOwner(ctx, id, user.Email); err != nil {
		return mapStoreErr("delete entry", err)
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func mapStoreErr(op string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
