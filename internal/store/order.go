package store

import (
	"sync"

	"github.com/tberndt/papertrade/internal/domain"
)

// OrderStore keeps every order ever submitted, addressable by id and by
// owner. Orders are inserted once by the matcher and then mutated in
// place under their symbol's book lock; the store's own lock only
// guards its indexes.
type OrderStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Order
	byUser map[string][]*domain.Order // submission order per user
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		byID:   make(map[string]*domain.Order),
		byUser: make(map[string][]*domain.Order),
	}
}

// Create indexes a newly submitted order.
func (s *OrderStore) Create(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[o.ID] = o
	s.byUser[o.UserID] = append(s.byUser[o.UserID], o)
}

// Get looks an order up by id.
func (s *OrderStore) Get(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.byID[id]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

// ListByUser pages through a user's orders, newest first, optionally
// narrowed to one status. page is 1-based; a page past the end is
// empty, not an error. The second return value is the total number of
// matches across all pages.
func (s *OrderStore) ListByUser(userID string, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Order // chronological
	for _, o := range s.byUser[userID] {
		if status == nil || o.Status == *status {
			matched = append(matched, o)
		}
	}

	out := make([]*domain.Order, 0, limit)
	skip := (page - 1) * limit
	if skip < 0 || skip >= len(matched) {
		return out, len(matched)
	}
	for i := len(matched) - 1 - skip; i >= 0 && len(out) < limit; i-- {
		out = append(out, matched[i])
	}
	return out, len(matched)
}

// Reset drops everything.
func (s *OrderStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]*domain.Order)
	s.byUser = make(map[string][]*domain.Order)
}
