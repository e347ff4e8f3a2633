package store

import (
	"sync"

	"github.com/tberndt/papertrade/internal/domain"
)

// ExecutionStore is the append-only trade log, keyed by symbol. It also
// tracks each symbol's last traded price, which makes it the ledger's
// price source for revaluation.
type ExecutionStore struct {
	mu    sync.RWMutex
	execs map[string][]*domain.Execution // symbol → executions (chronological)
	last  map[string]int64               // symbol → last trade price (cents)
}

// NewExecutionStore creates an empty ExecutionStore.
func NewExecutionStore() *ExecutionStore {
	return &ExecutionStore{
		execs: make(map[string][]*domain.Execution),
		last:  make(map[string]int64),
	}
}

// Append adds an execution to its symbol's chronological log and updates
// the symbol's last traded price.
func (s *ExecutionStore) Append(e *domain.Execution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.execs[e.Symbol] = append(s.execs[e.Symbol], e)
	s.last[e.Symbol] = e.Price
}

// BySymbol returns all executions for a symbol in chronological order.
// Returns an empty slice if the symbol has never traded.
func (s *ExecutionStore) BySymbol(symbol string) []*domain.Execution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	execs := s.execs[symbol]
	if execs == nil {
		return []*domain.Execution{}
	}

	// Return a copy to avoid callers mutating the internal slice.
	result := make([]*domain.Execution, len(execs))
	copy(result, execs)
	return result
}

// LastPrice returns the symbol's last traded price in cents, or false if
// the symbol has never traded.
func (s *ExecutionStore) LastPrice(symbol string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.last[symbol]
	return p, ok
}

// Count returns the number of executions recorded for a symbol.
func (s *ExecutionStore) Count(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.execs[symbol])
}

// Reset drops the entire log.
func (s *ExecutionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execs = make(map[string][]*domain.Execution)
	s.last = make(map[string]int64)
}
