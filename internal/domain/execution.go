package domain

import "time"

// Execution represents a single matched trade between exactly one buy
// and one sell order at one price and quantity. Executions are immutable
// once created and are appended to the execution log for auditing.
type Execution struct {
	ID          string
	Symbol      string
	Price       int64 // cents
	Quantity    int64
	BuyOrderID  string
	SellOrderID string
	BuyUserID   string
	SellUserID  string
	Sequence    uint64
	ExecutedAt  time.Time
}

// Notional returns price × quantity in cents, the cash that moves from
// buyer to seller.
func (e *Execution) Notional() int64 {
	return e.Price * e.Quantity
}
