package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tberndt/papertrade/internal/auth"
	"github.com/tberndt/papertrade/internal/domain"
	"github.com/tberndt/papertrade/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /buy and
// POST /sell. Price is ignored for market orders.
type submitOrderRequest struct {
	Symbol    string  `json:"symbol"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	OrderType string  `json:"order_type"`
}

// orderResponse is the JSON response for order endpoints. Price is
// omitted for market orders; nullable fields use pointers.
type orderResponse struct {
	OrderID           string              `json:"order_id"`
	UserID            string              `json:"user_id"`
	Symbol            string              `json:"symbol"`
	Side              string              `json:"side"`
	OrderType         string              `json:"order_type"`
	Price             *float64            `json:"price,omitempty"`
	Quantity          int64               `json:"quantity"`
	FilledQuantity    int64               `json:"filled_quantity"`
	RemainingQuantity int64               `json:"remaining_quantity"`
	Status            string              `json:"status"`
	AveragePrice      *float64            `json:"average_price"`
	CreatedAt         string              `json:"created_at"`
	CancelledAt       *string             `json:"cancelled_at"`
	Executions        []executionResponse `json:"executions"`
}

// executionResponse is a single execution in the order response.
type executionResponse struct {
	ExecutionID string  `json:"execution_id"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	ExecutedAt  string  `json:"executed_at"`
}

// listOrdersResponse is the JSON response for GET /orders.
type listOrdersResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// Buy handles POST /buy.
func (h *OrderHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, domain.OrderSideBuy)
}

// Sell handles POST /sell.
func (h *OrderHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, domain.OrderSideSell)
}

func (h *OrderHandler) submit(w http.ResponseWriter, r *http.Request, side domain.OrderSide) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Missing authentication")
		return
	}

	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.Submit(userID, service.SubmitOrderRequest{
		Side:      side,
		Symbol:    req.Symbol,
		Quantity:  req.Quantity,
		Price:     req.Price,
		OrderType: req.OrderType,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.Get(chi.URLParam(r, "order_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.Cancel(chi.URLParam(r, "order_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// ListOrders handles GET /orders for the authenticated user. Supports
// status, page, and limit query parameters.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Missing authentication")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	orders, total, err := h.orderSvc.List(userID, q.Get("status"), page, limit)
	if err != nil {
		mapError(w, err)
		return
	}

	resp := listOrdersResponse{
		Orders: make([]orderResponse, 0, len(orders)),
		Total:  total,
		Page:   max(page, 1),
		Limit:  len(orders),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, buildOrderResponse(o))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// buildOrderResponse constructs the response representation of an order.
// Market orders omit the price field entirely.
func buildOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:           o.ID,
		UserID:            o.UserID,
		Symbol:            o.Symbol,
		Side:              string(o.Side),
		OrderType:         string(o.Kind),
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.RemainingQuantity,
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt.UTC().Format(time.RFC3339),
		Executions:        make([]executionResponse, 0, len(o.Executions)),
	}
	if o.Kind == domain.OrderKindLimit {
		p := domain.CentsToDollars(o.Price)
		resp.Price = &p
	}
	if avg, ok := o.AveragePrice(); ok {
		v := domain.CentsToDollars(avg)
		resp.AveragePrice = &v
	}
	if o.CancelledAt != nil {
		s := o.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	for _, e := range o.Executions {
		resp.Executions = append(resp.Executions, executionResponse{
			ExecutionID: e.ID,
			Price:       domain.CentsToDollars(e.Price),
			Quantity:    e.Quantity,
			ExecutedAt:  e.ExecutedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}
