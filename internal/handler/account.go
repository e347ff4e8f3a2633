package handler

import (
	"net/http"

	"github.com/tberndt/papertrade/internal/service"
)

// AccountHandler handles HTTP requests for authentication and user
// bootstrap endpoints.
type AccountHandler struct {
	accountSvc *service.AccountService
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// assetRequest is a single asset in the initialize-user request body.
type assetRequest struct {
	Symbol             string  `json:"symbol"`
	Shares             int64   `json:"shares"`
	MarketValue        float64 `json:"market_value"`
	AverageCost        float64 `json:"average_cost"`
	PortfolioDiversity float64 `json:"portfolio_diversity"`
}

// initializeUserRequest is the JSON request body for
// POST /utils/post/initialize_user.
type initializeUserRequest struct {
	Username   string                  `json:"username"`
	Password   string                  `json:"password"`
	TotalMoney float64                 `json:"total_money"`
	Assets     map[string]assetRequest `json:"assets"`
}

// loginRequest is the JSON request body for POST /login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// InitializeUser handles POST /utils/post/initialize_user.
func (h *AccountHandler) InitializeUser(w http.ResponseWriter, r *http.Request) {
	var req initializeUserRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	assets := make(map[string]service.AssetInput, len(req.Assets))
	for key, a := range req.Assets {
		assets[key] = service.AssetInput{
			Symbol:             a.Symbol,
			Shares:             a.Shares,
			MarketValue:        a.MarketValue,
			AverageCost:        a.AverageCost,
			PortfolioDiversity: a.PortfolioDiversity,
		}
	}

	userID, err := h.accountSvc.InitializeUser(service.InitializeUserRequest{
		Username:   req.Username,
		Password:   req.Password,
		TotalMoney: req.TotalMoney,
		Assets:     assets,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{
		"user_id":  userID,
		"username": req.Username,
	})
}

// Login handles POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.accountSvc.Login(req.Username, req.Password)
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"token":   res.Token,
		"user_id": res.UserID,
	})
}

// Signout handles POST /signout. Tokens are stateless, so this only
// acknowledges; clients discard the token.
func (h *AccountHandler) Signout(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully signed out",
	})
}
