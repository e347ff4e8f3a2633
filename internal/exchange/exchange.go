// Package exchange wires the order books, ledger, stores, and matching
// engine into one explicitly owned context object. Process-wide state
// lives here rather than in package globals, so the whole exchange can
// be reset from the bootstrap utilities.
package exchange

import (
	"github.com/rs/zerolog"

	"github.com/tberndt/papertrade/internal/auth"
	"github.com/tberndt/papertrade/internal/domain"
	"github.com/tberndt/papertrade/internal/engine"
	"github.com/tberndt/papertrade/internal/ledger"
	"github.com/tberndt/papertrade/internal/store"
)

// Exchange owns all mutable exchange state.
type Exchange struct {
	Books      *engine.BookManager
	Orders     *store.OrderStore
	Executions *store.ExecutionStore
	Ledger     *ledger.Ledger
	Symbols    *domain.SymbolRegistry
	Accounts   *auth.Store
	Sequencer  *engine.Sequencer
	Matcher    *engine.Matcher
}

// New creates a fully wired Exchange.
func New(log zerolog.Logger) *Exchange {
	books := engine.NewBookManager()
	orders := store.NewOrderStore()
	execs := store.NewExecutionStore()
	led := ledger.New(execs)
	seq := &engine.Sequencer{}
	applier := engine.NewApplier(led, execs, log)
	matcher := engine.NewMatcher(books, orders, applier, execs, seq, log)

	return &Exchange{
		Books:      books,
		Orders:     orders,
		Executions: execs,
		Ledger:     led,
		Symbols:    domain.NewSymbolRegistry(),
		Accounts:   auth.NewStore(),
		Sequencer:  seq,
		Matcher:    matcher,
	}
}

// Reset wipes every book, order, execution, user, and account and
// rewinds the sequencer. Bootstrap utility; callers must ensure no
// trading is in flight.
func (x *Exchange) Reset() {
	x.Books.Reset()
	x.Orders.Reset()
	x.Executions.Reset()
	x.Ledger.Reset()
	x.Symbols.Reset()
	x.Accounts.Reset()
	x.Sequencer.Reset()
}
