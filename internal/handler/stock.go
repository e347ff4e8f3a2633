package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tberndt/papertrade/internal/service"
)

// StockHandler handles HTTP requests for stock endpoints.
type StockHandler struct {
	stockSvc *service.StockService
}

// NewStockHandler creates a StockHandler.
func NewStockHandler(stockSvc *service.StockService) *StockHandler {
	return &StockHandler{stockSvc: stockSvc}
}

// priceResponse is the JSON response for GET /stocks/{symbol}/price.
type priceResponse struct {
	Symbol     string   `json:"symbol"`
	LastPrice  *float64 `json:"last_price"`
	TradeCount int      `json:"trade_count"`
}

// bookLevelResponse is a single aggregated price level.
type bookLevelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// bookResponse is the JSON response for GET /stocks/{symbol}/book.
type bookResponse struct {
	Symbol     string              `json:"symbol"`
	Buys       []bookLevelResponse `json:"buys"`
	Sells      []bookLevelResponse `json:"sells"`
	Spread     *float64            `json:"spread"`
	SnapshotAt string              `json:"snapshot_at"`
}

// GetPrice handles GET /stocks/{symbol}/price.
func (h *StockHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	price, err := h.stockSvc.Price(chi.URLParam(r, "symbol"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, priceResponse{
		Symbol:     price.Symbol,
		LastPrice:  price.LastPrice,
		TradeCount: price.TradeCount,
	})
}

// GetBook handles GET /stocks/{symbol}/book.
func (h *StockHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.stockSvc.Book(chi.URLParam(r, "symbol"))
	if err != nil {
		mapError(w, err)
		return
	}

	resp := bookResponse{
		Symbol:     book.Symbol,
		Buys:       toLevelResponses(book.Buys),
		Sells:      toLevelResponses(book.Sells),
		Spread:     book.Spread,
		SnapshotAt: book.SnapshotAt.UTC().Format(time.RFC3339),
	}
	WriteJSON(w, http.StatusOK, resp)
}

func toLevelResponses(levels []service.BookPriceLevel) []bookLevelResponse {
	out := make([]bookLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, bookLevelResponse{
			Price:         l.Price,
			TotalQuantity: l.TotalQuantity,
			OrderCount:    l.OrderCount,
		})
	}
	return out
}
