package service

import (
	"github.com/tberndt/papertrade/internal/domain"
	"github.com/tberndt/papertrade/internal/ledger"
)

// AssetResponse represents a single holding in the portfolio response.
type AssetResponse struct {
	Symbol             string
	Shares             int64
	MarketValue        float64
	AverageCost        float64
	PortfolioDiversity float64
}

// PortfolioResponse represents the portfolio snapshot returned to
// callers.
type PortfolioResponse struct {
	UserID     string
	TotalMoney float64
	Assets     map[string]AssetResponse
}

// PortfolioService serves portfolio snapshots from the ledger.
type PortfolioService struct {
	ledger *ledger.Ledger
}

// NewPortfolioService creates a PortfolioService.
func NewPortfolioService(l *ledger.Ledger) *PortfolioService {
	return &PortfolioService{ledger: l}
}

// Get returns an immutable snapshot of the user's cash and holdings.
// Calling it twice with no intervening trade yields identical results.
func (s *PortfolioService) Get(userID string) (*PortfolioResponse, error) {
	snap, err := s.ledger.Snapshot(userID)
	if err != nil {
		return nil, err
	}

	assets := make(map[string]AssetResponse, len(snap.Holdings))
	for sym, h := range snap.Holdings {
		assets[sym] = AssetResponse{
			Symbol:             h.Symbol,
			Shares:             h.Shares,
			MarketValue:        h.MarketValue.InexactFloat64(),
			AverageCost:        h.AverageCost.InexactFloat64(),
			PortfolioDiversity: h.Diversity.InexactFloat64(),
		}
	}
	return &PortfolioResponse{
		UserID:     snap.UserID,
		TotalMoney: domain.CentsToDollars(snap.Cash),
		Assets:     assets,
	}, nil
}
