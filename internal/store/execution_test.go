package store

import (
	"testing"

	"github.com/tberndt/papertrade/internal/domain"
)

func TestExecutionStore_AppendAndBySymbol(t *testing.T) {
	s := NewExecutionStore()
	s.Append(&domain.Execution{ID: "e1", Symbol: "AAPL", Price: 10000, Quantity: 5})
	s.Append(&domain.Execution{ID: "e2", Symbol: "AAPL", Price: 10100, Quantity: 3})
	s.Append(&domain.Execution{ID: "e3", Symbol: "GOOG", Price: 250000, Quantity: 1})

	aapl := s.BySymbol("AAPL")
	if len(aapl) != 2 {
		t.Fatalf("len = %d, want 2", len(aapl))
	}
	if aapl[0].ID != "e1" || aapl[1].ID != "e2" {
		t.Error("expected chronological order")
	}
	if s.Count("AAPL") != 2 || s.Count("GOOG") != 1 {
		t.Errorf("counts = %d/%d", s.Count("AAPL"), s.Count("GOOG"))
	}
}

func TestExecutionStore_BySymbol_NeverTraded(t *testing.T) {
	s := NewExecutionStore()
	execs := s.BySymbol("NOPE")
	if execs == nil || len(execs) != 0 {
		t.Errorf("expected empty slice, got %v", execs)
	}
}

func TestExecutionStore_BySymbol_ReturnsCopy(t *testing.T) {
	s := NewExecutionStore()
	s.Append(&domain.Execution{ID: "e1", Symbol: "AAPL", Price: 100, Quantity: 1})

	execs := s.BySymbol("AAPL")
	execs[0] = nil

	fresh := s.BySymbol("AAPL")
	if fresh[0] == nil {
		t.Error("internal slice mutated through returned copy")
	}
}

func TestExecutionStore_LastPrice(t *testing.T) {
	s := NewExecutionStore()
	if _, ok := s.LastPrice("AAPL"); ok {
		t.Error("expected no last price before any trade")
	}

	s.Append(&domain.Execution{ID: "e1", Symbol: "AAPL", Price: 10000, Quantity: 5})
	s.Append(&domain.Execution{ID: "e2", Symbol: "AAPL", Price: 9900, Quantity: 5})

	p, ok := s.LastPrice("AAPL")
	if !ok || p != 9900 {
		t.Errorf("LastPrice = %d/%v, want 9900/true", p, ok)
	}
}

func TestExecutionStore_Reset(t *testing.T) {
	s := NewExecutionStore()
	s.Append(&domain.Execution{ID: "e1", Symbol: "AAPL", Price: 100, Quantity: 1})
	s.Reset()
	if s.Count("AAPL") != 0 {
		t.Error("expected executions gone after reset")
	}
	if _, ok := s.LastPrice("AAPL"); ok {
		t.Error("expected last price gone after reset")
	}
}
