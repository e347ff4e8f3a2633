package service

import (
	"github.com/rs/zerolog"

	"github.com/tberndt/papertrade/internal/exchange"
)

// AdminService owns the bootstrap utilities.
type AdminService struct {
	exchange *exchange.Exchange
	log      zerolog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(x *exchange.Exchange, log zerolog.Logger) *AdminService {
	return &AdminService{exchange: x, log: log}
}

// ResetAll wipes all exchange state: books, orders, executions, users,
// and accounts.
func (s *AdminService) ResetAll() {
	s.exchange.Reset()
	s.log.Warn().Msg("all exchange data deleted")
}
