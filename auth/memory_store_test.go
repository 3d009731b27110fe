package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory UserStore for tests. It enforces the same
// uniqueness rules the Mongo indexes provide.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]*Account)}
}

func (s *memStore) Create(_ context.Context, acc *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc.Email = strings.ToLower(strings.TrimSpace(acc.Email))
	for _, existing := range s.accounts {
		if acc.Email != "" && existing.Email == acc.Email {
			return ErrDuplicateAccount
		}
		if acc.GoogleID != "" && existing.GoogleID == acc.GoogleID {
			return ErrDuplicateAccount
		}
	}

	if acc.ID.IsZero() {
		acc.ID = primitive.NewObjectID()
	}
	now := time.Now()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	clone := *acc
	s.accounts[acc.ID.Hex()] = &clone
	return nil
}

func (s *memStore) FindByID(_ context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	clone := *acc
	clone.PasswordHash = "" // mirrors the Mongo projection
	return &clone, nil
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, acc := range s.accounts {
		if acc.Email != "" && acc.Email == email {
			clone := *acc
			return &clone, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s *memStore) FindByGoogleID(_ context.Context, googleID string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.accounts {
		if acc.GoogleID != "" && acc.GoogleID == googleID {
			clone := *acc
			return &clone, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s *memStore) LinkGoogle(_ context.Context, id, googleID string, role Role) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	acc.GoogleID = googleID
	acc.AuthProvider = ProviderGoogle
	acc.Role = role
	acc.UpdatedAt = time.Now()

	clone := *acc
	return &clone, nil
}

func (s *memStore) SetRole(_ context.Context, id string, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	acc.Role = role
	acc.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}
