package ledger

import "github.com/tberndt/papertrade/internal/domain"

// Snapshot is an immutable copy of a user's cash balance and holdings,
// taken under the user's lock. Two snapshots taken with no intervening
// trade are identical.
type Snapshot struct {
	UserID   string
	Username string
	Cash     int64 // cents
	Holdings map[string]*domain.Holding
}

// Snapshot returns a deep copy of the user's portfolio for reporting.
// The copy shares no mutable state with the ledger.
func (l *Ledger) Snapshot(userID string) (*Snapshot, error) {
	u, err := l.get(userID)
	if err != nil {
		return nil, err
	}

	u.Mu.Lock()
	defer u.Mu.Unlock()

	holdings := make(map[string]*domain.Holding, len(u.Holdings))
	for sym, h := range u.Holdings {
		holdings[sym] = h.Clone()
	}
	return &Snapshot{
		UserID:   u.UserID,
		Username: u.Username,
		Cash:     u.Cash,
		Holdings: holdings,
	}, nil
}
