package domain

import (
	"errors"
	"math"
)

// The engine stores every monetary amount as int64 cents; float64
// dollars exist only at the HTTP boundary. These two conversions are
// the entire bridge.

// DollarsToCents converts a dollar amount into cents. Amounts carrying
// a third decimal digit are rejected: there is no sub-cent money here.
func DollarsToCents(dollars float64) (int64, error) {
	cents := math.Round(dollars * 100)
	// Compare against mill precision; rounding both sides hides float
	// artifacts like 1.10*100 = 110.00000000000001.
	if math.Round(dollars*1000) != cents*10 {
		return 0, errors.New("monetary values must have at most 2 decimal places")
	}
	return int64(cents), nil
}

// CentsToDollars converts cents back into dollars for responses.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}
