package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tberndt/papertrade/internal/service"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
type PortfolioHandler struct {
	portfolioSvc *service.PortfolioService
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(portfolioSvc *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioSvc: portfolioSvc}
}

// portfolioResponse is the JSON response for GET /portfolio/user/{user_id}.
type portfolioResponse struct {
	UserID     string                   `json:"user_id"`
	TotalMoney float64                  `json:"total_money"`
	Assets     map[string]assetResponse `json:"assets"`
}

// assetResponse is a single holding in the portfolio response.
type assetResponse struct {
	Symbol             string  `json:"symbol"`
	Shares             int64   `json:"shares"`
	MarketValue        float64 `json:"market_value"`
	AverageCost        float64 `json:"average_cost"`
	PortfolioDiversity float64 `json:"portfolio_diversity"`
}

// GetPortfolio handles GET /portfolio/user/{user_id}.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := h.portfolioSvc.Get(chi.URLParam(r, "user_id"))
	if err != nil {
		mapError(w, err)
		return
	}

	resp := portfolioResponse{
		UserID:     snap.UserID,
		TotalMoney: snap.TotalMoney,
		Assets:     make(map[string]assetResponse, len(snap.Assets)),
	}
	for sym, a := range snap.Assets {
		resp.Assets[sym] = assetResponse{
			Symbol:             a.Symbol,
			Shares:             a.Shares,
			MarketValue:        a.MarketValue,
			AverageCost:        a.AverageCost,
			PortfolioDiversity: a.PortfolioDiversity,
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}
