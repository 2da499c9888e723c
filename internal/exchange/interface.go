package exchange

import (
	"context"

	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// SpotExchange is a venue that can report balances and place spot LIMIT/GTC orders.
// Implementations make a single attempt per call and return categorized errors.
type SpotExchange interface {
	GetName() string
	GetEnvironment() string
	IsTestnet() bool

	GetAccount(ctx context.Context) (*types.AccountInfo, error)
	PlaceLimitOrder(ctx context.Context, req types.OrderRequest) (*types.OrderResult, error)
}
