package domain

import "time"

// OrderKind distinguishes limit orders from market orders.
type OrderKind string

const (
	OrderKindLimit  OrderKind = "limit"
	OrderKindMarket OrderKind = "market"
)

// OrderSide indicates whether an order buys or sells shares.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "open"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Order represents a buy or sell instruction submitted by a user.
//
// Kind is a tagged variant: Price is meaningful only when Kind is
// OrderKindLimit. Market orders carry no price constraint and match
// against any opposing price, but keep their submission Sequence so
// time priority still applies while they rest on the book.
type Order struct {
	ID                string
	UserID            string
	Symbol            string
	Side              OrderSide
	Kind              OrderKind
	Price             int64 // cents, meaningful only for limit orders
	Quantity          int64
	FilledQuantity    int64
	RemainingQuantity int64
	Sequence          uint64 // monotonic submission number
	Status            OrderStatus
	CreatedAt         time.Time
	CancelledAt       *time.Time
	Executions        []*Execution
}

// Clone returns a copy of the order that is safe to read after the
// matcher moves on. The executions slice is copied; Execution values
// themselves are immutable once created.
func (o *Order) Clone() *Order {
	c := *o
	c.Executions = append(make([]*Execution, 0, len(o.Executions)), o.Executions...)
	if o.CancelledAt != nil {
		ts := *o.CancelledAt
		c.CancelledAt = &ts
	}
	return &c
}

// IsBuy reports whether the order is on the buy side.
func (o *Order) IsBuy() bool {
	return o.Side == OrderSideBuy
}

// Terminal reports whether the order has reached a final state.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusFilled || o.Status == OrderStatusCancelled
}

// AveragePrice computes the volume-weighted average execution price
// as sum(execution.price × execution.quantity) / filled_quantity using
// integer arithmetic. Returns (price, true) when executions exist, or
// (0, false) when nothing has been executed.
func (o *Order) AveragePrice() (int64, bool) {
	if len(o.Executions) == 0 || o.FilledQuantity == 0 {
		return 0, false
	}
	var total int64
	for _, e := range o.Executions {
		total += e.Price * e.Quantity
	}
	return total / o.FilledQuantity, true
}
