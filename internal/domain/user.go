package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents a user's position in a single stock symbol.
//
// Shares and the prices that move them are integer cents/counts; the
// derived valuation fields use exact decimal arithmetic so cost-basis
// blends never drift. A holding whose share count reaches zero is
// removed from the user's map, never kept as a zero entry.
type Holding struct {
	Symbol      string
	Shares      int64
	AverageCost decimal.Decimal // dollars per share, quantity-weighted
	MarketValue decimal.Decimal // dollars, shares × last trade price
	Diversity   decimal.Decimal // fraction of total portfolio value, [0,1]
}

// Clone returns a copy of the holding. Decimal values are immutable, so
// a shallow copy is a deep copy.
func (h *Holding) Clone() *Holding {
	c := *h
	return &c
}

// User represents a registered participant and their portfolio. Owned
// exclusively by the portfolio ledger; mutated only under Mu.
type User struct {
	UserID    string
	Username  string
	Cash      int64 // cents
	Holdings  map[string]*Holding // symbol → holding
	CreatedAt time.Time
	Mu        sync.Mutex // per-user lock for ledger mutations
}

// SharesOf returns the user's share count for the given symbol, or 0 if
// the user has no holding in that symbol.
func (u *User) SharesOf(symbol string) int64 {
	h, ok := u.Holdings[symbol]
	if !ok {
		return 0
	}
	return h.Shares
}
