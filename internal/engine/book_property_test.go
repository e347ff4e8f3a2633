package engine

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/tberndt/papertrade/internal/domain"
)

// genBookEntry generates a random BookEntry. Sequences are unique (they
// come from the loop index), prices are drawn from a small range to
// force price ties, and a fraction of entries are market orders.
func genBookEntry(side domain.OrderSide, seq uint64) *rapid.Generator[BookEntry] {
	return rapid.Custom(func(t *rapid.T) BookEntry {
		market := rapid.IntRange(0, 4).Draw(t, "market") == 0
		var price int64
		if !market {
			price = rapid.Int64Range(1, 20).Draw(t, "price")
		}
		id := fmt.Sprintf("order-%d", seq)
		return BookEntry{
			Market:   market,
			Price:    price,
			Sequence: seq,
			OrderID:  id,
			Order: &domain.Order{
				ID:                id,
				Side:              side,
				Price:             price,
				Sequence:          seq,
				RemainingQuantity: 1,
			},
		}
	})
}

func checkSideOrdering(t *rapid.T, prev, cur BookEntry, buySide bool) {
	if prev.Market != cur.Market {
		if cur.Market {
			t.Fatalf("market entry %s sorted after limit entry %s", cur.OrderID, prev.OrderID)
		}
		return
	}
	if !cur.Market && cur.Price != prev.Price {
		if buySide && cur.Price > prev.Price {
			t.Fatalf("buy side: price should be descending, got %d after %d", cur.Price, prev.Price)
		}
		if !buySide && cur.Price < prev.Price {
			t.Fatalf("sell side: price should be ascending, got %d after %d", cur.Price, prev.Price)
		}
		return
	}
	if cur.Sequence < prev.Sequence {
		t.Fatalf("same priority class: sequence should be ascending, got %d after %d", cur.Sequence, prev.Sequence)
	}
}

func TestProperty_BuySideSortingInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "numEntries")
		book := NewOrderBook("TEST")

		for i := 0; i < n; i++ {
			entry := genBookEntry(domain.OrderSideBuy, uint64(i+1)).Draw(t, fmt.Sprintf("buy-%d", i))
			book.Insert(entry)
		}

		var prev *BookEntry
		book.WalkBuys(func(entry BookEntry) bool {
			if prev != nil {
				checkSideOrdering(t, *prev, entry, true)
			}
			cur := entry
			prev = &cur
			return true
		})
	})
}

func TestProperty_SellSideSortingInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "numEntries")
		book := NewOrderBook("TEST")

		for i := 0; i < n; i++ {
			entry := genBookEntry(domain.OrderSideSell, uint64(i+1)).Draw(t, fmt.Sprintf("sell-%d", i))
			book.Insert(entry)
		}

		var prev *BookEntry
		book.WalkSells(func(entry BookEntry) bool {
			if prev != nil {
				checkSideOrdering(t, *prev, entry, false)
			}
			cur := entry
			prev = &cur
			return true
		})
	})
}

func TestProperty_InsertRemoveRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "numEntries")
		book := NewOrderBook("TEST")

		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			entry := genBookEntry(domain.OrderSideBuy, uint64(i+1)).Draw(t, fmt.Sprintf("entry-%d", i))
			book.Insert(entry)
			ids = append(ids, entry.OrderID)
		}
		for _, id := range ids {
			book.Remove(id)
		}

		if book.BuyCount() != 0 || book.SellCount() != 0 {
			t.Fatalf("book not empty after removing everything: buys=%d sells=%d",
				book.BuyCount(), book.SellCount())
		}
	})
}
