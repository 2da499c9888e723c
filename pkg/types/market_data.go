package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the holding of a single asset
type Balance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// Total returns free plus locked
func (b Balance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// AccountInfo is the account snapshot returned by a venue
type AccountInfo struct {
	AccountType string
	CanTrade    bool
	UpdateTime  time.Time
	Balances    []Balance
}

// NonZero returns the balances with a positive free amount, in venue order
func (a *AccountInfo) NonZero() []Balance {
	if a == nil {
		return nil
	}
	out := make([]Balance, 0, len(a.Balances))
	for _, b := range a.Balances {
		if b.Free.IsPositive() {
			out = append(out, b)
		}
	}
	return out
}

// Find returns the balance of asset, if the venue reported one
func (a *AccountInfo) Find(asset string) (Balance, bool) {
	if a == nil {
		return Balance{}, false
	}
	for _, b := range a.Balances {
		if b.Asset == asset {
			return b, true
		}
	}
	return Balance{}, false
}
