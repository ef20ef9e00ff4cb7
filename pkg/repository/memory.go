package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
)

// MemoryStore is an in-process account store. A single mutex serializes every
// operation so failed-login accounting cannot lose updates.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// GetByID retrieves a user by ID.
func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

// GetByEmail retrieves a user by email.
func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}

// Create creates a new user.
func (s *MemoryStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	s.users[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

// Update replaces the profile, role, verification and professional fields.
// Lockout state is owned by the login methods and is left untouched.
func (s *MemoryStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if user.Email != cur.Email {
		if _, taken := s.byEmail[user.Email]; taken {
			return domain.ErrEmailAlreadyExists
		}
		delete(s.byEmail, cur.Email)
		s.byEmail[user.Email] = user.ID
	}

	next := user.Clone()
	next.PasswordHash = cur.PasswordHash
	next.Locked = cur.Locked
	next.FailedLoginAttempts = cur.FailedLoginAttempts
	next.LastLoginAt = cur.LastLoginAt
	next.CreatedAt = cur.CreatedAt
	s.users[user.ID] = next
	return nil
}

// Delete permanently deletes a user.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)
	return nil
}

// List returns users ordered by creation time, then id.
func (s *MemoryStore) List(_ context.Context, offset, limit int) ([]*domain.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []*domain.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*domain.User, 0, end-offset)
	for _, u := range all[offset:end] {
		page = append(page, u.Clone())
	}
	return page, total, nil
}

// RecordFailedLogin increments the failure counter and locks at maxAttempts.
func (s *MemoryStore) RecordFailedLogin(_ context.Context, id uuid.UUID, maxAttempts int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return 0, false, domain.ErrUserNotFound
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		u.Locked = true
	}
	u.UpdatedAt = time.Now()
	return u.FailedLoginAttempts, u.Locked, nil
}

// ResetFailedLogins zeroes the counter unless the account is locked.
func (s *MemoryStore) ResetFailedLogins(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.Locked {
		return domain.ErrAccountLocked
	}
	u.FailedLoginAttempts = 0
	u.LastLoginAt = &at
	return nil
}

// Unlock clears the lock and the failure counter.
func (s *MemoryStore) Unlock(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Locked = false
	u.FailedLoginAttempts = 0
	u.UpdatedAt = time.Now()
	return nil
}

// MarkVerified marks the email verified and clears the verification token.
func (s *MemoryStore) MarkVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.EmailVerified = true
	u.VerificationToken = nil
	u.UpdatedAt = time.Now()
	return nil
}
