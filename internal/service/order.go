package service

import (
	"fmt"
	"strings"

	"github.com/tberndt/papertrade/internal/domain"
	"github.com/tberndt/papertrade/internal/engine"
	"github.com/tberndt/papertrade/internal/ledger"
	"github.com/tberndt/papertrade/internal/store"
)

// ValidOrderStatuses lists all valid order status values for validation.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusOpen:            true,
	domain.OrderStatusPartiallyFilled: true,
	domain.OrderStatusFilled:          true,
	domain.OrderStatusCancelled:       true,
}

// Caps on order size keep price×quantity comfortably inside int64 when
// the ledger computes an execution's notional.
const (
	MaxOrderQuantity = 1_000_000_000
	MaxLimitPrice    = 10_000_000 // dollars
)

// SubmitOrderRequest represents the input for order submission. The
// order type is the wire spelling (Market or Limit, case-insensitive);
// Price is ignored for market orders.
type SubmitOrderRequest struct {
	Side      domain.OrderSide
	Symbol    string
	Quantity  int64
	Price     float64
	OrderType string
}

// OrderService handles order submission, retrieval, cancellation, and
// listing.
type OrderService struct {
	matcher       *engine.Matcher
	ledger        *ledger.Ledger
	orders        *store.OrderStore
	symbols       *domain.SymbolRegistry
	strictSymbols bool
}

// NewOrderService creates an OrderService with the given dependencies.
// With strictSymbols set, orders for symbols that have never appeared in
// any user's holdings or prior orders are rejected.
func NewOrderService(
	matcher *engine.Matcher,
	l *ledger.Ledger,
	orders *store.OrderStore,
	symbols *domain.SymbolRegistry,
	strictSymbols bool,
) *OrderService {
	return &OrderService{
		matcher:       matcher,
		ledger:        l,
		orders:        orders,
		symbols:       symbols,
		strictSymbols: strictSymbols,
	}
}

// Submit validates the request and runs the matching engine. The
// returned order is a point-in-time copy carrying the post-match
// status, fill quantities, and executions.
func (s *OrderService) Submit(userID string, req SubmitOrderRequest) (*domain.Order, error) {
	var kind domain.OrderKind
	switch strings.ToLower(req.OrderType) {
	case string(domain.OrderKindMarket):
		kind = domain.OrderKindMarket
	case string(domain.OrderKindLimit):
		kind = domain.OrderKindLimit
	default:
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown order type: %s. Must be one of: Market, Limit", req.OrderType),
		}
	}

	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return nil, &domain.ValidationError{
			Message: "side must be 'buy' or 'sell'",
		}
	}
	if !symbolRegex.MatchString(req.Symbol) {
		return nil, &domain.ValidationError{
			Message: "symbol must match ^[A-Z]{1,10}$",
		}
	}
	if req.Quantity <= 0 {
		return nil, &domain.ValidationError{
			Message: "quantity must be a positive integer",
		}
	}
	if req.Quantity > MaxOrderQuantity {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("quantity must be at most %d", MaxOrderQuantity),
		}
	}

	var priceCents int64
	if kind == domain.OrderKindLimit {
		if req.Price <= 0 {
			return nil, &domain.ValidationError{
				Message: "price must be greater than 0 for limit orders",
			}
		}
		if req.Price > MaxLimitPrice {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("price must be at most %d", MaxLimitPrice),
			}
		}
		var err error
		priceCents, err = domain.DollarsToCents(req.Price)
		if err != nil {
			return nil, &domain.ValidationError{
				Message: "price must have at most 2 decimal places",
			}
		}
	}

	if !s.ledger.UserExists(userID) {
		return nil, domain.ErrUserNotFound
	}
	if s.strictSymbols && !s.symbols.Exists(req.Symbol) {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unknown symbol: %s", req.Symbol),
		}
	}
	s.symbols.Register(req.Symbol)

	order := &domain.Order{
		UserID:   userID,
		Symbol:   req.Symbol,
		Side:     req.Side,
		Kind:     kind,
		Price:    priceCents,
		Quantity: req.Quantity,
	}
	if _, err := s.matcher.Submit(order); err != nil {
		return nil, err
	}
	return s.matcher.Snapshot(order), nil
}

// Get retrieves a point-in-time copy of an order by id.
func (s *OrderService) Get(orderID string) (*domain.Order, error) {
	return s.matcher.Lookup(orderID)
}

// Cancel cancels a resting order.
func (s *OrderService) Cancel(orderID string) (*domain.Order, error) {
	order, err := s.matcher.Cancel(orderID)
	if err != nil {
		return nil, err
	}
	return s.matcher.Snapshot(order), nil
}

// List returns the user's orders, newest first, optionally filtered by
// status. Page and limit are 1-based; limit defaults to 20, capped at
// 100.
func (s *OrderService) List(userID string, status string, page, limit int) ([]*domain.Order, int, error) {
	var statusFilter *domain.OrderStatus
	if status != "" {
		st := domain.OrderStatus(status)
		if !ValidOrderStatuses[st] {
			return nil, 0, &domain.ValidationError{
				Message: fmt.Sprintf("invalid status: %s", status),
			}
		}
		statusFilter = &st
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	orders, total := s.orders.ListByUser(userID, statusFilter, page, limit)
	out := make([]*domain.Order, len(orders))
	for i, o := range orders {
		out[i] = s.matcher.Snapshot(o)
	}
	return out, total, nil
}
