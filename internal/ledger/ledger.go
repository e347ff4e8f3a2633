// Package ledger owns every user's cash balance and per-symbol holdings.
// All mutations go through the ledger, which guarantees that cash never
// goes negative, shares never go below zero, and two-party settlements
// are applied entirely or not at all.
package ledger

import (
	"fmt"
	"time"

	"sync"

	"github.com/shopspring/decimal"

	"github.com/tberndt/papertrade/internal/domain"
)

// PriceSource resolves the last traded price for a symbol, in cents.
// The execution log implements this.
type PriceSource interface {
	LastPrice(symbol string) (int64, bool)
}

// Ledger is a thread-safe in-memory portfolio ledger, keyed by user_id.
// Per-user mutexes serialize mutations of a single user; the outer lock
// only guards the map itself.
type Ledger struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	prices PriceSource
}

// New creates an empty Ledger backed by the given price source.
func New(prices PriceSource) *Ledger {
	return &Ledger{
		users:  make(map[string]*domain.User),
		prices: prices,
	}
}

// CreateUser registers a user with an initial cash balance (cents) and
// initial holdings. The holdings map is taken over by the ledger; callers
// must not retain references. Initial valuation fields are stored as
// provided and only recomputed once the user trades.
func (l *Ledger) CreateUser(userID, username string, cash int64, holdings map[string]*domain.Holding) error {
	if cash < 0 {
		panic("ledger: negative initial cash")
	}
	if holdings == nil {
		holdings = make(map[string]*domain.Holding)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.users[userID]; exists {
		return domain.ErrUserAlreadyExists
	}
	l.users[userID] = &domain.User{
		UserID:    userID,
		Username:  username,
		Cash:      cash,
		Holdings:  holdings,
		CreatedAt: time.Now(),
	}
	return nil
}

// UserExists returns true if a user with the given ID exists.
func (l *Ledger) UserExists(userID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.users[userID]
	return ok
}

func (l *Ledger) get(userID string) (*domain.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	u, ok := l.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// CreditCash adds amount cents to the user's balance.
func (l *Ledger) CreditCash(userID string, amount int64) error {
	if amount <= 0 {
		panic("ledger: non-positive cash credit")
	}
	u, err := l.get(userID)
	if err != nil {
		return err
	}

	u.Mu.Lock()
	defer u.Mu.Unlock()
	u.Cash += amount
	l.revalueLocked(u, l.prices.LastPrice)
	return nil
}

// DebitCash removes amount cents from the user's balance. Fails with
// ErrInsufficientFunds when amount exceeds the balance; the balance is
// left untouched in that case.
func (l *Ledger) DebitCash(userID string, amount int64) error {
	if amount <= 0 {
		panic("ledger: non-positive cash debit")
	}
	u, err := l.get(userID)
	if err != nil {
		return err
	}

	u.Mu.Lock()
	defer u.Mu.Unlock()
	if amount > u.Cash {
		return domain.ErrInsufficientFunds
	}
	u.Cash -= amount
	l.revalueLocked(u, l.prices.LastPrice)
	return nil
}

// CreditShares adds qty shares of symbol bought at price (cents per
// share), blending the average cost basis with the new lot:
//
//	new_avg = (old_qty×old_avg + qty×price) / (old_qty+qty)
func (l *Ledger) CreditShares(userID, symbol string, qty, price int64) error {
	if qty <= 0 || price <= 0 {
		panic("ledger: non-positive share credit")
	}
	u, err := l.get(userID)
	if err != nil {
		return err
	}

	u.Mu.Lock()
	defer u.Mu.Unlock()
	creditSharesLocked(u, symbol, qty, price)
	l.revalueLocked(u, l.prices.LastPrice)
	return nil
}

// DebitShares removes qty shares of symbol. Fails with
// ErrInsufficientShares when qty exceeds the held count. A holding that
// reaches zero shares is removed from the user's map entirely.
func (l *Ledger) DebitShares(userID, symbol string, qty int64) error {
	if qty <= 0 {
		panic("ledger: non-positive share debit")
	}
	u, err := l.get(userID)
	if err != nil {
		return err
	}

	u.Mu.Lock()
	defer u.Mu.Unlock()
	if qty > u.SharesOf(symbol) {
		return domain.ErrInsufficientShares
	}
	debitSharesLocked(u, symbol, qty)
	l.revalueLocked(u, l.prices.LastPrice)
	return nil
}

// Settle applies one execution to both counterparties atomically: debit
// buyer cash, credit seller cash, credit buyer shares, debit seller
// shares, then revalue both portfolios at the execution price. Both user
// locks are held for the whole settlement, acquired in user-id order so
// concurrent settlements over the same pair cannot deadlock. Validation
// happens before any mutation, so a failed settlement changes nothing.
func (l *Ledger) Settle(e *domain.Execution) error {
	buyer, err := l.get(e.BuyUserID)
	if err != nil {
		return err
	}
	seller, err := l.get(e.SellUserID)
	if err != nil {
		return err
	}

	lockPair(buyer, seller)
	defer unlockPair(buyer, seller)

	cost := e.Notional()
	if cost <= 0 || e.Quantity <= 0 {
		panic(fmt.Sprintf("ledger: invalid execution %s: price=%d qty=%d", e.ID, e.Price, e.Quantity))
	}
	if buyer.Cash < cost {
		return domain.ErrInsufficientFunds
	}
	if seller.SharesOf(e.Symbol) < e.Quantity {
		return domain.ErrInsufficientShares
	}

	buyer.Cash -= cost
	seller.Cash += cost
	creditSharesLocked(buyer, e.Symbol, e.Quantity, e.Price)
	debitSharesLocked(seller, e.Symbol, e.Quantity)

	// The execution itself is the freshest trade for its symbol; the
	// execution log only sees it after settlement succeeds.
	at := func(symbol string) (int64, bool) {
		if symbol == e.Symbol {
			return e.Price, true
		}
		return l.prices.LastPrice(symbol)
	}
	l.revalueLocked(buyer, at)
	if seller != buyer {
		l.revalueLocked(seller, at)
	}
	return nil
}

// lockPair locks both users in user-id order. Locking a user against
// itself (self-trade) locks once.
func lockPair(a, b *domain.User) {
	if a == b {
		a.Mu.Lock()
		return
	}
	if a.UserID > b.UserID {
		a, b = b, a
	}
	a.Mu.Lock()
	b.Mu.Lock()
}

func unlockPair(a, b *domain.User) {
	if a == b {
		a.Mu.Unlock()
		return
	}
	a.Mu.Unlock()
	b.Mu.Unlock()
}

func creditSharesLocked(u *domain.User, symbol string, qty, price int64) {
	px := decimal.New(price, -2)
	h, ok := u.Holdings[symbol]
	if !ok {
		u.Holdings[symbol] = &domain.Holding{
			Symbol:      symbol,
			Shares:      qty,
			AverageCost: px,
		}
		return
	}
	oldCost := decimal.NewFromInt(h.Shares).Mul(h.AverageCost)
	newCost := oldCost.Add(decimal.NewFromInt(qty).Mul(px))
	h.Shares += qty
	h.AverageCost = newCost.Div(decimal.NewFromInt(h.Shares))
}

func debitSharesLocked(u *domain.User, symbol string, qty int64) {
	h, ok := u.Holdings[symbol]
	if !ok || h.Shares < qty {
		panic(fmt.Sprintf("ledger: share debit below zero for %s/%s", u.UserID, symbol))
	}
	h.Shares -= qty
	if h.Shares == 0 {
		delete(u.Holdings, symbol)
	}
}

// revalueLocked recomputes market value and portfolio diversity for all
// of the user's holdings. Market value is shares × last trade price,
// falling back to the average cost basis for symbols that have never
// traded. Diversity is holding value / total portfolio value, where cash
// counts toward the total but toward no symbol's numerator; a zero total
// yields zero diversity for every holding.
func (l *Ledger) revalueLocked(u *domain.User, lastPrice func(string) (int64, bool)) {
	total := decimal.New(u.Cash, -2)
	for _, h := range u.Holdings {
		px := h.AverageCost
		if cents, ok := lastPrice(h.Symbol); ok {
			px = decimal.New(cents, -2)
		}
		h.MarketValue = decimal.NewFromInt(h.Shares).Mul(px)
		total = total.Add(h.MarketValue)
	}
	for _, h := range u.Holdings {
		if total.IsZero() {
			h.Diversity = decimal.Zero
		} else {
			h.Diversity = h.MarketValue.Div(total)
		}
	}
}

// Reset drops all users. Bootstrap utility; not meant to run concurrently
// with live trading.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users = make(map[string]*domain.User)
}
