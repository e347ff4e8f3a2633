package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/tberndt/papertrade/internal/auth"
	"github.com/tberndt/papertrade/internal/service"
)

// NewRouter creates the gateway router with all routes registered,
// request logging, Content-Type validation, CORS, and bearer-token
// authentication on the trading and portfolio routes.
func NewRouter(
	accountSvc *service.AccountService,
	orderSvc *service.OrderService,
	portfolioSvc *service.PortfolioService,
	stockSvc *service.StockService,
	adminSvc *service.AdminService,
	tokens *auth.TokenManager,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	accountH := NewAccountHandler(accountSvc)
	orderH := NewOrderHandler(orderSvc)
	portfolioH := NewPortfolioHandler(portfolioSvc)
	stockH := NewStockHandler(stockSvc)
	adminH := NewAdminHandler(adminSvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes.
	r.Post("/login", accountH.Login)
	r.Post("/signout", accountH.Signout)

	// Bootstrap utilities.
	r.Post("/utils/post/initialize_user", accountH.InitializeUser)
	r.Delete("/utils/delete/all_data", adminH.DeleteAllData)

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware)

		r.Post("/buy", orderH.Buy)
		r.Post("/sell", orderH.Sell)

		r.Get("/portfolio/user/{user_id}", portfolioH.GetPortfolio)

		r.Get("/orders", orderH.ListOrders)
		r.Get("/orders/{order_id}", orderH.GetOrder)
		r.Delete("/orders/{order_id}", orderH.CancelOrder)

		r.Get("/stocks/{symbol}/price", stockH.GetPrice)
		r.Get("/stocks/{symbol}/book", stockH.GetBook)
	})

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}

// requestLogging returns middleware that logs each request's method,
// path, status code, and duration.
func requestLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST,
// PUT, and PATCH requests with a body. If the Content-Type header
// doesn't start with "application/json", it returns 400 Bad Request
// before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength != 0 {
				ct := r.Header.Get("Content-Type")
				if ct == "" || !strings.HasPrefix(ct, "application/json") {
					WriteError(w, http.StatusBadRequest, "invalid_request",
						"Content-Type must be application/json")
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
