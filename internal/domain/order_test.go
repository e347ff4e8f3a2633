package domain

import (
	"testing"
	"time"
)

func TestOrderIsBuy(t *testing.T) {
	buy := &Order{Side: OrderSideBuy}
	if !buy.IsBuy() {
		t.Error("expected buy order to report IsBuy")
	}
	sell := &Order{Side: OrderSideSell}
	if sell.IsBuy() {
		t.Error("expected sell order not to report IsBuy")
	}
}

func TestOrderTerminal(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusOpen, false},
		{OrderStatusPartiallyFilled, false},
		{OrderStatusFilled, true},
		{OrderStatusCancelled, true},
	}
	for _, tt := range tests {
		o := &Order{Status: tt.status}
		if got := o.Terminal(); got != tt.want {
			t.Errorf("Terminal() with status %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestOrderClone_Independent(t *testing.T) {
	ts := time.Now()
	o := &Order{
		ID:                "o1",
		Status:            OrderStatusPartiallyFilled,
		FilledQuantity:    5,
		RemainingQuantity: 5,
		CancelledAt:       &ts,
		Executions:        []*Execution{{ID: "e1", Price: 100, Quantity: 5}},
	}

	c := o.Clone()
	c.Status = OrderStatusFilled
	c.RemainingQuantity = 0
	c.Executions = append(c.Executions, &Execution{ID: "e2"})

	if o.Status != OrderStatusPartiallyFilled {
		t.Errorf("original status mutated to %s", o.Status)
	}
	if o.RemainingQuantity != 5 {
		t.Errorf("original remaining quantity mutated to %d", o.RemainingQuantity)
	}
	if len(o.Executions) != 1 {
		t.Errorf("original executions grew to %d entries", len(o.Executions))
	}
	if c.CancelledAt == o.CancelledAt {
		t.Error("clone shares the CancelledAt pointer")
	}
}

func TestOrderAveragePrice_NoExecutions(t *testing.T) {
	o := &Order{Quantity: 10, RemainingQuantity: 10}
	if _, ok := o.AveragePrice(); ok {
		t.Error("expected no average price for an unexecuted order")
	}
}

func TestOrderAveragePrice_SingleExecution(t *testing.T) {
	o := &Order{
		Quantity:       10,
		FilledQuantity: 10,
		Executions: []*Execution{
			{Price: 15000, Quantity: 10},
		},
	}
	avg, ok := o.AveragePrice()
	if !ok {
		t.Fatal("expected an average price")
	}
	if avg != 15000 {
		t.Errorf("AveragePrice() = %d, want 15000", avg)
	}
}

func TestOrderAveragePrice_VolumeWeighted(t *testing.T) {
	// 5 @ $100 + 15 @ $120 → (50000 + 180000) / 20 = 11500.
	o := &Order{
		Quantity:       20,
		FilledQuantity: 20,
		Executions: []*Execution{
			{Price: 10000, Quantity: 5},
			{Price: 12000, Quantity: 15},
		},
	}
	avg, ok := o.AveragePrice()
	if !ok {
		t.Fatal("expected an average price")
	}
	if avg != 11500 {
		t.Errorf("AveragePrice() = %d, want 11500", avg)
	}
}

func TestOrderAveragePrice_TruncatesTowardZero(t *testing.T) {
	// (100 + 101) / 2 = 100 with integer division.
	o := &Order{
		Quantity:       2,
		FilledQuantity: 2,
		Executions: []*Execution{
			{Price: 100, Quantity: 1},
			{Price: 101, Quantity: 1},
		},
	}
	avg, ok := o.AveragePrice()
	if !ok {
		t.Fatal("expected an average price")
	}
	if avg != 100 {
		t.Errorf("AveragePrice() = %d, want 100", avg)
	}
}

func TestExecutionNotional(t *testing.T) {
	e := &Execution{Price: 5500, Quantity: 40}
	if got := e.Notional(); got != 220000 {
		t.Errorf("Notional() = %d, want 220000", got)
	}
}
