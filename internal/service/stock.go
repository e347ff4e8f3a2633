package service

import (
	"time"

	"github.com/tberndt/papertrade/internal/domain"
	"github.com/tberndt/papertrade/internal/engine"
	"github.com/tberndt/papertrade/internal/store"
)

// PriceResponse represents the response for GET /stocks/{symbol}/price.
type PriceResponse struct {
	Symbol     string
	LastPrice  *float64 // nil when the symbol has never traded
	TradeCount int
}

// BookPriceLevel represents an aggregated price level in the book
// response.
type BookPriceLevel struct {
	Price         float64
	TotalQuantity int64
	OrderCount    int
}

// BookResponse represents the response for GET /stocks/{symbol}/book.
type BookResponse struct {
	Symbol     string
	Buys       []BookPriceLevel
	Sells      []BookPriceLevel
	Spread     *float64 // nil if either side has no priced orders
	SnapshotAt time.Time
}

// StockService handles last-price and book-depth queries.
type StockService struct {
	execs   *store.ExecutionStore
	books   *engine.BookManager
	symbols *domain.SymbolRegistry
	depth   int
}

// NewStockService creates a StockService. depth caps the number of
// aggregated price levels per side in book responses.
func NewStockService(execs *store.ExecutionStore, books *engine.BookManager, symbols *domain.SymbolRegistry, depth int) *StockService {
	return &StockService{
		execs:   execs,
		books:   books,
		symbols: symbols,
		depth:   depth,
	}
}

// Price returns the symbol's last traded price, nil if it has never
// traded.
func (s *StockService) Price(symbol string) (*PriceResponse, error) {
	if !s.symbols.Exists(symbol) {
		return nil, domain.ErrSymbolNotFound
	}

	resp := &PriceResponse{
		Symbol:     symbol,
		TradeCount: s.execs.Count(symbol),
	}
	if cents, ok := s.execs.LastPrice(symbol); ok {
		p := domain.CentsToDollars(cents)
		resp.LastPrice = &p
	}
	return resp, nil
}

// Book returns the aggregated depth of both book sides.
func (s *StockService) Book(symbol string) (*BookResponse, error) {
	if !s.symbols.Exists(symbol) {
		return nil, domain.ErrSymbolNotFound
	}

	book := s.books.GetOrCreate(symbol)
	book.RLock()
	buys := book.TopBuys(s.depth)
	sells := book.TopSells(s.depth)
	book.RUnlock()

	resp := &BookResponse{
		Symbol:     symbol,
		Buys:       toLevels(buys),
		Sells:      toLevels(sells),
		SnapshotAt: time.Now(),
	}
	if len(buys) > 0 && len(sells) > 0 {
		spread := domain.CentsToDollars(sells[0].Price - buys[0].Price)
		resp.Spread = &spread
	}
	return resp, nil
}

func toLevels(levels []engine.PriceLevel) []BookPriceLevel {
	out := make([]BookPriceLevel, len(levels))
	for i, l := range levels {
		out[i] = BookPriceLevel{
			Price:         domain.CentsToDollars(l.Price),
			TotalQuantity: l.TotalQuantity,
			OrderCount:    l.OrderCount,
		}
	}
	return out
}
