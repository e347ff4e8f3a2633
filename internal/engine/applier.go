package engine

import (
	"github.com/rs/zerolog"

	"github.com/tberndt/papertrade/internal/domain"
	"github.com/tberndt/papertrade/internal/ledger"
	"github.com/tberndt/papertrade/internal/store"
)

// Applier translates an execution into ledger mutations on both
// counterparties and records it in the execution log. The ledger applies
// the settlement entirely or not at all; a failed settlement therefore
// leaves no trace anywhere.
type Applier struct {
	ledger *ledger.Ledger
	execs  *store.ExecutionStore
	log    zerolog.Logger
}

// NewApplier creates an Applier with the given dependencies.
func NewApplier(l *ledger.Ledger, execs *store.ExecutionStore, log zerolog.Logger) *Applier {
	return &Applier{
		ledger: l,
		execs:  execs,
		log:    log,
	}
}

// Apply settles the execution between its two counterparties, appends it
// to the execution log, and attaches it to both orders. Ledger errors
// (insufficient funds/shares, unknown user) propagate unchanged and
// leave every party untouched.
func (a *Applier) Apply(e *domain.Execution, buy, sell *domain.Order) error {
	if err := a.ledger.Settle(e); err != nil {
		return err
	}

	a.execs.Append(e)
	buy.Executions = append(buy.Executions, e)
	sell.Executions = append(sell.Executions, e)

	a.log.Info().
		Str("symbol", e.Symbol).
		Int64("price", e.Price).
		Int64("quantity", e.Quantity).
		Str("buy_order", e.BuyOrderID).
		Str("sell_order", e.SellOrderID).
		Msg("execution applied")
	return nil
}
