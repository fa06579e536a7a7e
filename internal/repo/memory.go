package repo

import (
	"context"
	"sync"
	"time"

	"github.com/crucial707/phonebook/internal/models"
)

// MemoryUserRepo is an in-process credential store used with STORE_DRIVER=memory and in tests.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]models.User)}
}

func (r *MemoryUserRepo) Create(_ context.Context, u models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return models.User{}, ErrDuplicate
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.Email] = u
	return u, nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

// MemoryEntryRepo is an in-process record store. List order is insertion order.
type MemoryEntryRepo struct {
	mu      sync.RWMutex
	entries map[string]models.Entry
	order   []string
}

func NewMemoryEntryRepo() *MemoryEntryRepo {
	return &MemoryEntryRepo{entries: make(map[string]models.Entry)}
}

func (r *MemoryEntryRepo) Create(_ context.Context, e models.Entry) (models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.ID]; ok {
		return models.Entry{}, ErrDuplicate
	}
	r.entries[e.ID] = e
	r.order = append(r.order, e.ID)
	return e, nil
}

func (r *MemoryEntryRepo) ListByOwner(_ context.Context, owner string) ([]models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Entry{}
	for _, id := range r.order {
		if e := r.entries[id]; e.UserID == owner {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *MemoryEntryRepo) GetByIDAndOwner(_ context.Context, id, owner string) (models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != owner {
		return models.Entry{}, ErrNotFound
	}
	return e, nil
}

func (r *MemoryEntryRepo) UpdateByIDAndOwner(_ context.Context, id, owner, name, phone string) (models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != owner {
		return models.Entry{}, ErrNotFound
	}
	e.Name = name
	e.PhoneNumber = phone
	r.entries[id] = e
	return e, nil
}

func (r *MemoryEntryRepo) DeleteByIDAndOwner(_ context.Context, id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != owner {
		return ErrNotFound
	}
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
