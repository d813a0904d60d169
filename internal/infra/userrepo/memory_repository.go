package userrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/projectshelf/internal/domain/user"
)

// MemoryRepository provides an in-memory user store for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[string]user.User
	emailIndex map[string]string
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[string]user.User),
		emailIndex: make(map[string]string),
	}
}

// Create stores the user record.
func (r *MemoryRepository) Create(_ context.Context, u user.NewUser) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[u.Email]; exists {
		return user.User{}, user.ErrEmailExists
	}
	now := time.Now().UTC()
	created := user.User{
		ID:           uuid.NewString(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[created.ID] = created
	r.emailIndex[created.Email] = created.ID
	return created, nil
}

// GetByEmail returns a user by exact email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.users[id], true, nil
	}
	return user.User{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok, nil
}

// List returns every user, oldest first.
func (r *MemoryRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces the mutable profile fields. Email is immutable here.
func (r *MemoryRepository) Update(_ context.Context, u user.User) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[u.ID]
	if !ok {
		return user.User{}, false, nil
	}
	existing.FirstName = u.FirstName
	existing.LastName = u.LastName
	existing.PasswordHash = u.PasswordHash
	existing.Role = u.Role
	existing.IsActive = u.IsActive
	existing.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = existing
	return existing, true, nil
}

// Delete removes the user and its email index entry.
func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[id]
	if !ok {
		return false, nil
	}
	delete(r.users, id)
	delete(r.emailIndex, existing.Email)
	return true, nil
}

var _ user.Repository = (*MemoryRepository)(nil)
