package engine

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tberndt/papertrade/internal/domain"
	"github.com/tberndt/papertrade/internal/ledger"
	"github.com/tberndt/papertrade/internal/store"
)

// Sequencer hands out monotonically increasing submission sequence
// numbers. Safe for concurrent use.
type Sequencer struct {
	n atomic.Uint64
}

// Next returns the next sequence number, starting at 1.
func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

// Reset rewinds the sequencer to zero.
func (s *Sequencer) Reset() {
	s.n.Store(0)
}

// Matcher implements the matching engine. Each symbol's matching pass
// runs as one critical section under that symbol's book lock; orders for
// different symbols match fully in parallel.
type Matcher struct {
	books   *BookManager
	orders  *store.OrderStore
	applier *Applier
	prices  ledger.PriceSource
	seq     *Sequencer
	log     zerolog.Logger
}

// NewMatcher creates a Matcher with the given dependencies.
func NewMatcher(
	books *BookManager,
	orders *store.OrderStore,
	applier *Applier,
	prices ledger.PriceSource,
	seq *Sequencer,
	log zerolog.Logger,
) *Matcher {
	return &Matcher{
		books:   books,
		orders:  orders,
		applier: applier,
		prices:  prices,
		seq:     seq,
		log:     log,
	}
}

// Submit processes an incoming order through the matching engine. It
// walks the opposite side of the symbol's book in priority order,
// producing an execution per cross, and rests any unfilled remainder —
// market orders included, so a market order submitted before any
// liquidity exists waits on the book until a counterparty arrives.
//
// The caller provides an Order with UserID, Symbol, Side, Kind, Price
// (limit only), and Quantity set and already validated. The matcher
// assigns ID, Sequence, and CreatedAt and manages all status
// transitions. Funds and shares are validated at execution time, not
// reserved at insertion.
//
// The per-symbol write lock is held for the entire matching pass.
func (m *Matcher) Submit(order *domain.Order) ([]*domain.Execution, error) {
	book := m.books.GetOrCreate(order.Symbol)

	book.mu.Lock()
	defer book.mu.Unlock()

	order.ID = uuid.New().String()
	order.Sequence = m.seq.Next()
	order.CreatedAt = time.Now()
	order.RemainingQuantity = order.Quantity
	order.FilledQuantity = 0
	order.Status = domain.OrderStatusOpen
	order.Executions = []*domain.Execution{}

	m.orders.Create(order)

	var execs []*domain.Execution

	for order.RemainingQuantity > 0 {
		entry, found := book.BestOpposing(order.Side)
		if !found {
			break
		}
		resting := entry.Order

		// Price compatibility: market orders (either side) accept any
		// price; a limit order only crosses a priced counterpart.
		if order.Kind == domain.OrderKindLimit && !entry.Market {
			if order.IsBuy() {
				if order.Price < entry.Price {
					break
				}
			} else {
				if entry.Price < order.Price {
					break
				}
			}
		}

		// The resting order's price governs. A resting market order has
		// none, so the incoming limit's price is used; when both sides
		// are market the symbol's last trade price decides, and a
		// never-traded symbol leaves both orders resting.
		price, ok := m.executionPrice(order, entry)
		if !ok {
			break
		}

		qty := order.RemainingQuantity
		if resting.RemainingQuantity < qty {
			qty = resting.RemainingQuantity
		}

		buyOrder, sellOrder := order, resting
		if !order.IsBuy() {
			buyOrder, sellOrder = resting, order
		}

		exec := &domain.Execution{
			ID:          uuid.New().String(),
			Symbol:      order.Symbol,
			Price:       price,
			Quantity:    qty,
			BuyOrderID:  buyOrder.ID,
			SellOrderID: sellOrder.ID,
			BuyUserID:   buyOrder.UserID,
			SellUserID:  sellOrder.UserID,
			Sequence:    m.seq.Next(),
			ExecutedAt:  time.Now(),
		}

		if err := m.applier.Apply(exec, buyOrder, sellOrder); err != nil {
			switch {
			case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrInsufficientShares):
				// The execution is discarded in full. If the incoming
				// order's owner is the failing party, matching stops and
				// the remainder rests; a resting order that can no
				// longer be funded is cancelled so the loop advances to
				// the next candidate.
				incomingFailed := errors.Is(err, domain.ErrInsufficientFunds) == order.IsBuy()
				if incomingFailed {
					m.log.Warn().
						Str("order_id", order.ID).
						Err(err).
						Msg("incoming order cannot fund execution, resting remainder")
				} else {
					m.cancelRestingLocked(book, resting)
					m.log.Warn().
						Str("order_id", resting.ID).
						Err(err).
						Msg("resting order cannot fund execution, cancelled")
					continue
				}
			default:
				return execs, err
			}
			break
		}

		order.RemainingQuantity -= qty
		order.FilledQuantity += qty
		resting.RemainingQuantity -= qty
		resting.FilledQuantity += qty
		if order.RemainingQuantity < 0 || resting.RemainingQuantity < 0 {
			panic("matcher: remaining quantity below zero")
		}

		if order.RemainingQuantity == 0 {
			order.Status = domain.OrderStatusFilled
		} else {
			order.Status = domain.OrderStatusPartiallyFilled
		}
		if resting.RemainingQuantity == 0 {
			resting.Status = domain.OrderStatusFilled
			book.Remove(resting.ID)
		} else {
			resting.Status = domain.OrderStatusPartiallyFilled
		}

		execs = append(execs, exec)
	}

	if order.RemainingQuantity > 0 {
		book.Insert(BookEntry{
			Market:   order.Kind == domain.OrderKindMarket,
			Price:    order.Price,
			Sequence: order.Sequence,
			OrderID:  order.ID,
			Order:    order,
		})
	}

	return execs, nil
}

// executionPrice resolves the trade price for a cross between the
// incoming order and a resting entry.
func (m *Matcher) executionPrice(incoming *domain.Order, resting BookEntry) (int64, bool) {
	switch {
	case !resting.Market:
		return resting.Price, true
	case incoming.Kind == domain.OrderKindLimit:
		return incoming.Price, true
	default:
		return m.prices.LastPrice(incoming.Symbol)
	}
}

// Cancel cancels an order that is still resting on its book. It acquires
// the per-symbol write lock, so a cancellation takes effect only if the
// order has not been consumed by a concurrent matching pass; otherwise
// the order is reported as not cancellable.
func (m *Matcher) Cancel(orderID string) (*domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return nil, err
	}

	book := m.books.GetOrCreate(order.Symbol)
	book.mu.Lock()
	defer book.mu.Unlock()

	if order.Terminal() || !book.Contains(order.ID) {
		return nil, domain.ErrOrderNotCancellable
	}

	m.cancelRestingLocked(book, order)
	return order, nil
}

// Lookup returns a copy of an order, taken under its symbol's book read
// lock so a concurrent matching pass is never observed mid-update.
func (m *Matcher) Lookup(orderID string) (*domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	return m.Snapshot(order), nil
}

// Snapshot copies an order under its symbol's book read lock.
func (m *Matcher) Snapshot(order *domain.Order) *domain.Order {
	book := m.books.GetOrCreate(order.Symbol)
	book.mu.RLock()
	defer book.mu.RUnlock()
	return order.Clone()
}

func (m *Matcher) cancelRestingLocked(book *OrderBook, order *domain.Order) {
	book.Remove(order.ID)
	now := time.Now()
	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = &now
}
