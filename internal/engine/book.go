package engine

import (
	"sync"

	"github.com/google/btree"

	"github.com/tberndt/papertrade/internal/domain"
)

// BookEntry represents a single order resting on the book.
//
// Market is set for resting market orders: they carry no price
// constraint, sort ahead of every limit order on their side, and keep
// submission-sequence order among themselves.
type BookEntry struct {
	Market   bool
	Price    int64 // cents, meaningless when Market
	Sequence uint64
	OrderID  string
	Order    *domain.Order
}

// PriceLevel represents an aggregated price level in the order book.
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// buyLess defines ordering for the buy side: market orders first, then
// price descending, ties broken by ascending submission sequence. Min()
// returns the highest-priority buy.
func buyLess(a, b BookEntry) bool {
	if a.Market != b.Market {
		return a.Market
	}
	if !a.Market && a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Sequence < b.Sequence
}

// sellLess defines ordering for the sell side: market orders first, then
// price ascending, ties broken by ascending submission sequence. Min()
// returns the highest-priority sell.
func sellLess(a, b BookEntry) bool {
	if a.Market != b.Market {
		return a.Market
	}
	if !a.Market && a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Sequence < b.Sequence
}

// OrderBook maintains the buy and sell sides for a single symbol using
// B-trees with a secondary index for O(log n) removal by order ID.
type OrderBook struct {
	symbol string
	mu     sync.RWMutex
	buys   *btree.BTreeG[BookEntry]
	sells  *btree.BTreeG[BookEntry]
	index  map[string]BookEntry // order_id → entry
}

// NewOrderBook creates an order book for the given symbol.
func NewOrderBook(symbol string) *OrderBook {
	const degree = 32
	return &OrderBook{
		symbol: symbol,
		buys:   btree.NewG[BookEntry](degree, buyLess),
		sells:  btree.NewG[BookEntry](degree, sellLess),
		index:  make(map[string]BookEntry),
	}
}

// RLock acquires the read lock on the order book.
func (ob *OrderBook) RLock() {
	ob.mu.RLock()
}

// RUnlock releases the read lock on the order book.
func (ob *OrderBook) RUnlock() {
	ob.mu.RUnlock()
}

// Insert places an entry on the side matching its order.
func (ob *OrderBook) Insert(entry BookEntry) {
	if entry.Order.IsBuy() {
		ob.buys.ReplaceOrInsert(entry)
	} else {
		ob.sells.ReplaceOrInsert(entry)
	}
	ob.index[entry.OrderID] = entry
}

// Remove deletes an order from the book by order ID using the secondary
// index. No-op when the order is not resting on this book.
func (ob *OrderBook) Remove(orderID string) {
	entry, ok := ob.index[orderID]
	if !ok {
		return
	}
	delete(ob.index, orderID)
	// Delete is a no-op on the side the entry isn't on.
	ob.buys.Delete(entry)
	ob.sells.Delete(entry)
}

// Contains reports whether the order is currently resting on this book.
func (ob *OrderBook) Contains(orderID string) bool {
	_, ok := ob.index[orderID]
	return ok
}

// BestBuy returns the highest-priority resting buy.
func (ob *OrderBook) BestBuy() (BookEntry, bool) {
	return ob.buys.Min()
}

// BestSell returns the highest-priority resting sell.
func (ob *OrderBook) BestSell() (BookEntry, bool) {
	return ob.sells.Min()
}

// BestOpposing returns the highest-priority resting order on the side
// opposite the given one.
func (ob *OrderBook) BestOpposing(side domain.OrderSide) (BookEntry, bool) {
	if side == domain.OrderSideBuy {
		return ob.BestSell()
	}
	return ob.BestBuy()
}

// TopBuys returns up to n aggregated price levels from the buy side,
// ordered by price descending. Resting market orders carry no price and
// are excluded from the levels.
func (ob *OrderBook) TopBuys(n int) []PriceLevel {
	return topLevels(ob.buys, n)
}

// TopSells returns up to n aggregated price levels from the sell side,
// ordered by price ascending.
func (ob *OrderBook) TopSells(n int) []PriceLevel {
	return topLevels(ob.sells, n)
}

// topLevels iterates the B-tree in order and aggregates priced entries
// into at most n price levels.
func topLevels(tree *btree.BTreeG[BookEntry], n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	tree.Ascend(func(entry BookEntry) bool {
		if entry.Market {
			return true
		}
		if len(levels) > 0 && levels[len(levels)-1].Price == entry.Price {
			levels[len(levels)-1].TotalQuantity += entry.Order.RemainingQuantity
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:         entry.Price,
			TotalQuantity: entry.Order.RemainingQuantity,
			OrderCount:    1,
		})
		return true
	})
	return levels
}

// WalkBuys iterates buys in priority order. The callback returns true to
// continue, false to stop.
func (ob *OrderBook) WalkBuys(fn func(BookEntry) bool) {
	ob.buys.Ascend(fn)
}

// WalkSells iterates sells in priority order.
func (ob *OrderBook) WalkSells(fn func(BookEntry) bool) {
	ob.sells.Ascend(fn)
}

// BuyCount returns the number of individual buy orders on the book.
func (ob *OrderBook) BuyCount() int {
	return ob.buys.Len()
}

// SellCount returns the number of individual sell orders on the book.
func (ob *OrderBook) SellCount() int {
	return ob.sells.Len()
}

// BookManager is a thread-safe map of symbol → OrderBook. Books are
// created lazily on first reference and never destroyed while orders for
// the symbol are outstanding.
type BookManager struct {
	mu    sync.RWMutex
	books map[string]*OrderBook
}

// NewBookManager creates a new BookManager.
func NewBookManager() *BookManager {
	return &BookManager{
		books: make(map[string]*OrderBook),
	}
}

// GetOrCreate returns the order book for the given symbol, creating one
// if it doesn't already exist.
func (bm *BookManager) GetOrCreate(symbol string) *OrderBook {
	bm.mu.RLock()
	book, ok := bm.books[symbol]
	bm.mu.RUnlock()
	if ok {
		return book
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	// Double-check after acquiring write lock.
	if book, ok = bm.books[symbol]; ok {
		return book
	}
	book = NewOrderBook(symbol)
	bm.books[symbol] = book
	return book
}

// Reset drops every book.
func (bm *BookManager) Reset() {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.books = make(map[string]*OrderBook)
}
