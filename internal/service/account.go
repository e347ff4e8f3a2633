package service

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tberndt/papertrade/internal/auth"
	"github.com/tberndt/papertrade/internal/domain"
	"github.com/tberndt/papertrade/internal/ledger"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	symbolRegex   = regexp.MustCompile(`^[A-Z]{1,10}$`)
)

// AssetInput represents a single asset in an initialize-user request.
type AssetInput struct {
	Symbol             string
	Shares             int64
	MarketValue        float64
	AverageCost        float64
	PortfolioDiversity float64
}

// InitializeUserRequest represents the input for the initialize-user
// bootstrap utility.
type InitializeUserRequest struct {
	Username   string
	Password   string
	TotalMoney float64
	Assets     map[string]AssetInput
}

// LoginResult carries an issued token and the user id it resolves to.
type LoginResult struct {
	Token  string
	UserID string
}

// AccountService handles user bootstrap and authentication.
type AccountService struct {
	accounts *auth.Store
	ledger   *ledger.Ledger
	symbols  *domain.SymbolRegistry
	tokens   *auth.TokenManager
}

// NewAccountService creates an AccountService with the given dependencies.
func NewAccountService(
	accounts *auth.Store,
	l *ledger.Ledger,
	symbols *domain.SymbolRegistry,
	tokens *auth.TokenManager,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		ledger:   l,
		symbols:  symbols,
		tokens:   tokens,
	}
}

// InitializeUser validates the request, creates the authentication
// record and the ledger user with the given cash and assets, and
// registers the asset symbols. Returns the new user id.
func (s *AccountService) InitializeUser(req InitializeUserRequest) (string, error) {
	if !usernameRegex.MatchString(req.Username) {
		return "", &domain.ValidationError{
			Message: "username must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if req.Password == "" {
		return "", &domain.ValidationError{
			Message: "password must not be empty",
		}
	}
	if req.TotalMoney < 0 {
		return "", &domain.ValidationError{
			Message: "total_money must be >= 0",
		}
	}
	cash, err := domain.DollarsToCents(req.TotalMoney)
	if err != nil {
		return "", &domain.ValidationError{
			Message: "total_money must have at most 2 decimal places",
		}
	}

	holdings := make(map[string]*domain.Holding, len(req.Assets))
	for key, a := range req.Assets {
		if a.Symbol == "" {
			a.Symbol = key
		}
		if !symbolRegex.MatchString(a.Symbol) {
			return "", &domain.ValidationError{
				Message: fmt.Sprintf("asset symbol must match ^[A-Z]{1,10}$, got %q", a.Symbol),
			}
		}
		if a.Shares <= 0 {
			return "", &domain.ValidationError{
				Message: fmt.Sprintf("asset shares must be > 0 for symbol %s", a.Symbol),
			}
		}
		if a.AverageCost < 0 || a.MarketValue < 0 {
			return "", &domain.ValidationError{
				Message: fmt.Sprintf("asset valuations must be >= 0 for symbol %s", a.Symbol),
			}
		}
		if _, dup := holdings[a.Symbol]; dup {
			return "", &domain.ValidationError{
				Message: fmt.Sprintf("duplicate symbol in assets: %s", a.Symbol),
			}
		}
		holdings[a.Symbol] = &domain.Holding{
			Symbol:      a.Symbol,
			Shares:      a.Shares,
			AverageCost: decimal.NewFromFloat(a.AverageCost),
			MarketValue: decimal.NewFromFloat(a.MarketValue),
			Diversity:   decimal.NewFromFloat(a.PortfolioDiversity),
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	userID := uuid.New().String()
	if err := s.accounts.Create(&auth.Record{
		UserID:       userID,
		Username:     req.Username,
		PasswordHash: hash,
	}); err != nil {
		return "", err
	}
	if err := s.ledger.CreateUser(userID, req.Username, cash, holdings); err != nil {
		return "", err
	}
	for sym := range holdings {
		s.symbols.Register(sym)
	}
	return userID, nil
}

// Login verifies the credentials and issues a bearer token whose
// subject is the user id.
func (s *AccountService) Login(username, password string) (*LoginResult, error) {
	rec, err := s.accounts.Get(username)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !auth.CheckPassword(rec.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(rec.UserID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, UserID: rec.UserID}, nil
}
