package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tberndt/papertrade/internal/auth"
	"github.com/tberndt/papertrade/internal/exchange"
	"github.com/tberndt/papertrade/internal/service"
)

// newTestServer builds the full router over a fresh exchange.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zerolog.Nop()
	x := exchange.New(log)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	accountSvc := service.NewAccountService(x.Accounts, x.Ledger, x.Symbols, tokens)
	orderSvc := service.NewOrderService(x.Matcher, x.Ledger, x.Orders, x.Symbols, false)
	portfolioSvc := service.NewPortfolioService(x.Ledger)
	stockSvc := service.NewStockService(x.Executions, x.Books, x.Symbols, 10)
	adminSvc := service.NewAdminService(x, log)

	srv := httptest.NewServer(NewRouter(accountSvc, orderSvc, portfolioSvc, stockSvc, adminSvc, tokens, log))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

// initUser creates a user through the bootstrap endpoint and logs them
// in, returning the user id and a bearer token.
func initUser(t *testing.T, srv *httptest.Server, username string, cash float64, assets map[string]any) (string, string) {
	t.Helper()
	body := map[string]any{
		"username":    username,
		"password":    "password",
		"total_money": cash,
	}
	if assets != nil {
		body["assets"] = assets
	}
	resp, data := doJSON(t, http.MethodPost, srv.URL+"/utils/post/initialize_user", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "initialize_user: %v", data)
	userID := data["user_id"].(string)

	resp, data = doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]any{
		"username": username,
		"password": "password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return userID, data["token"].(string)
}

func asset(shares int64, marketValue, avgCost, diversity float64) map[string]any {
	return map[string]any{
		"shares":              shares,
		"market_value":        marketValue,
		"average_cost":        avgCost,
		"portfolio_diversity": diversity,
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, data := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", data["status"])
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := newTestServer(t)
	initUser(t, srv, "alice", 1000, nil)

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]any{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", data["error"])
}

func TestInitializeUser_DuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	initUser(t, srv, "alice", 1000, nil)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/utils/post/initialize_user", "", map[string]any{
		"username":    "alice",
		"password":    "password",
		"total_money": 1000,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)
	for _, route := range []struct {
		method, path string
	}{
		{http.MethodPost, "/buy"},
		{http.MethodPost, "/sell"},
		{http.MethodGet, "/portfolio/user/someone"},
		{http.MethodGet, "/orders"},
		{http.MethodGet, "/stocks/AAPL/price"},
	} {
		req, err := http.NewRequest(route.method, srv.URL+route.path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}
}

func TestSubmitOrder_ContentTypeRequired(t *testing.T) {
	srv := newTestServer(t)
	_, token := initUser(t, srv, "alice", 1000, nil)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/buy",
		bytes.NewBufferString(`{"symbol":"AAPL","quantity":1,"price":10,"order_type":"Limit"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitOrder_UnknownField(t *testing.T) {
	srv := newTestServer(t)
	_, token := initUser(t, srv, "alice", 1000, nil)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/buy", token, map[string]any{
		"symbol":     "AAPL",
		"quantity":   1,
		"price":      10,
		"order_type": "Limit",
		"bogus":      true,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitOrder_UnknownOrderType(t *testing.T) {
	srv := newTestServer(t)
	_, token := initUser(t, srv, "alice", 1000, nil)

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/buy", token, map[string]any{
		"symbol":     "AAPL",
		"quantity":   1,
		"price":      10,
		"order_type": "Stop",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, data["message"], "Unknown order type: Stop")
}

func TestTradeFlow_MarketBuyBeforeLiquidity(t *testing.T) {
	srv := newTestServer(t)
	userA, tokenA := initUser(t, srv, "usera", 100, nil)
	userB, tokenB := initUser(t, srv, "userb", 0, map[string]any{
		"X": asset(100, 50, 0.5, 1),
	})
	userC, tokenC := initUser(t, srv, "userc", 0, map[string]any{
		"X": asset(100, 50, 0.5, 1),
	})

	// A's market buy rests with no liquidity available.
	resp, data := doJSON(t, http.MethodPost, srv.URL+"/buy", tokenA, map[string]any{
		"symbol":     "X",
		"quantity":   100,
		"order_type": "Market",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", data)
	assert.Equal(t, "open", data["status"])
	assert.Nil(t, data["price"])

	// B's limit sell fills A's waiting market order at 0.55.
	resp, data = doJSON(t, http.MethodPost, srv.URL+"/sell", tokenB, map[string]any{
		"symbol":     "X",
		"quantity":   100,
		"price":      0.55,
		"order_type": "Limit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", data)
	assert.Equal(t, "filled", data["status"])
	execs := data["executions"].([]any)
	require.Len(t, execs, 1)
	assert.Equal(t, 0.55, execs[0].(map[string]any)["price"])

	// C's cheaper sell arrives after the fill and just rests.
	resp, data = doJSON(t, http.MethodPost, srv.URL+"/sell", tokenC, map[string]any{
		"symbol":     "X",
		"quantity":   100,
		"price":      0.50,
		"order_type": "Limit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", data)
	assert.Equal(t, "open", data["status"])

	// A: 100 shares, 45.00 cash left.
	resp, data = doJSON(t, http.MethodGet, srv.URL+"/portfolio/user/"+userA, tokenA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 45.0, data["total_money"])
	aX := data["assets"].(map[string]any)["X"].(map[string]any)
	assert.Equal(t, float64(100), aX["shares"])
	assert.Equal(t, 55.0, aX["market_value"])
	assert.Equal(t, 0.55, aX["average_cost"])

	// B: no shares, 55.00 cash.
	resp, data = doJSON(t, http.MethodGet, srv.URL+"/portfolio/user/"+userB, tokenB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 55.0, data["total_money"])
	assert.Empty(t, data["assets"])

	// C is not a counterparty, so nothing about C changed.
	resp, data = doJSON(t, http.MethodGet, srv.URL+"/portfolio/user/"+userC, tokenC, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, data["total_money"])
	cX := data["assets"].(map[string]any)["X"].(map[string]any)
	assert.Equal(t, float64(100), cX["shares"])
	assert.Equal(t, 50.0, cX["market_value"])
}

func TestTradeFlow_SimpleLimitCross(t *testing.T) {
	srv := newTestServer(t)
	user1, token1 := initUser(t, srv, "user1", 10000, nil)
	user2, token2 := initUser(t, srv, "user2", 0, map[string]any{
		"Y": asset(10, 1500, 150, 1),
	})

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/buy", token1, map[string]any{
		"symbol":     "Y",
		"quantity":   10,
		"price":      150,
		"order_type": "Limit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", data)

	resp, data = doJSON(t, http.MethodPost, srv.URL+"/sell", token2, map[string]any{
		"symbol":     "Y",
		"quantity":   10,
		"price":      150,
		"order_type": "Limit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", data)
	assert.Equal(t, "filled", data["status"])
	assert.Equal(t, 150.0, *jsonFloat(data, "average_price"))

	_, data = doJSON(t, http.MethodGet, srv.URL+"/portfolio/user/"+user1, token1, nil)
	assert.Equal(t, 8500.0, data["total_money"])
	y1 := data["assets"].(map[string]any)["Y"].(map[string]any)
	assert.Equal(t, float64(10), y1["shares"])
	assert.Equal(t, 150.0, y1["average_cost"])

	_, data = doJSON(t, http.MethodGet, srv.URL+"/portfolio/user/"+user2, token2, nil)
	assert.Equal(t, 1500.0, data["total_money"])
	assert.Empty(t, data["assets"])
}

func jsonFloat(data map[string]any, key string) *float64 {
	v, ok := data[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

func TestOrderLifecycle(t *testing.T) {
	srv := newTestServer(t)
	_, token := initUser(t, srv, "alice", 10000, nil)

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/buy", token, map[string]any{
		"symbol":     "AAPL",
		"quantity":   5,
		"price":      150,
		"order_type": "Limit",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := data["order_id"].(string)

	// Fetch it back.
	resp, data = doJSON(t, http.MethodGet, srv.URL+"/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "open", data["status"])
	assert.Equal(t, 150.0, *jsonFloat(data, "price"))

	// List shows it.
	resp, data = doJSON(t, http.MethodGet, srv.URL+"/orders?status=open", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), data["total"])

	// Cancel it.
	resp, data = doJSON(t, http.MethodDelete, srv.URL+"/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", data["status"])
	assert.NotNil(t, data["cancelled_at"])

	// A second cancel is rejected.
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/orders/"+orderID, token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Unknown order id.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/orders/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListOrders_InvalidStatus(t *testing.T) {
	srv := newTestServer(t)
	_, token := initUser(t, srv, "alice", 1000, nil)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/orders?status=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStocks_PriceAndBook(t *testing.T) {
	srv := newTestServer(t)
	_, token1 := initUser(t, srv, "seller", 0, map[string]any{
		"AAPL": asset(10, 1500, 150, 1),
	})
	_, token2 := initUser(t, srv, "buyer", 10000, nil)

	resp, data := doJSON(t, http.MethodGet, srv.URL+"/stocks/AAPL/price", token1, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, data["last_price"])

	doJSON(t, http.MethodPost, srv.URL+"/sell", token1, map[string]any{
		"symbol": "AAPL", "quantity": 5, "price": 150, "order_type": "Limit",
	})
	doJSON(t, http.MethodPost, srv.URL+"/buy", token2, map[string]any{
		"symbol": "AAPL", "quantity": 5, "price": 150, "order_type": "Limit",
	})

	resp, data = doJSON(t, http.MethodGet, srv.URL+"/stocks/AAPL/price", token1, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 150.0, *jsonFloat(data, "last_price"))
	assert.Equal(t, float64(1), data["trade_count"])

	// Rest one order per side and check the depth view.
	doJSON(t, http.MethodPost, srv.URL+"/sell", token1, map[string]any{
		"symbol": "AAPL", "quantity": 2, "price": 151, "order_type": "Limit",
	})
	doJSON(t, http.MethodPost, srv.URL+"/buy", token2, map[string]any{
		"symbol": "AAPL", "quantity": 2, "price": 149, "order_type": "Limit",
	})

	resp, data = doJSON(t, http.MethodGet, srv.URL+"/stocks/AAPL/book", token1, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	buys := data["buys"].([]any)
	sells := data["sells"].([]any)
	require.Len(t, buys, 1)
	require.Len(t, sells, 1)
	assert.Equal(t, 149.0, buys[0].(map[string]any)["price"])
	assert.Equal(t, 151.0, sells[0].(map[string]any)["price"])
	assert.Equal(t, 2.0, *jsonFloat(data, "spread"))

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/stocks/NOPE/price", token1, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignout(t *testing.T) {
	srv := newTestServer(t)
	resp, data := doJSON(t, http.MethodPost, srv.URL+"/signout", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Successfully signed out", data["message"])
}

func TestDeleteAllData(t *testing.T) {
	srv := newTestServer(t)
	userID, token := initUser(t, srv, "alice", 1000, nil)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/utils/delete/all_data", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The user and their portfolio are gone.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+fmt.Sprintf("/portfolio/user/%s", userID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]any{
		"username": "alice",
		"password": "password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
