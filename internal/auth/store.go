package auth

import (
	"sync"

	"github.com/tberndt/papertrade/internal/domain"
)

// Record is a user's authentication record, kept separate from the
// portfolio ledger.
type Record struct {
	UserID       string
	Username     string
	PasswordHash string
}

// Store is a thread-safe in-memory store of authentication records,
// keyed by username.
type Store struct {
	mu         sync.RWMutex
	byUsername map[string]*Record
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		byUsername: make(map[string]*Record),
	}
}

// Create adds a record. Returns domain.ErrUserAlreadyExists when the
// username is taken.
func (s *Store) Create(r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[r.Username]; exists {
		return domain.ErrUserAlreadyExists
	}
	s.byUsername[r.Username] = r
	return nil
}

// Get retrieves a record by username. Returns domain.ErrUserNotFound
// when absent.
func (s *Store) Get(username string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r, nil
}

// Reset drops all records.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUsername = make(map[string]*Record)
}
