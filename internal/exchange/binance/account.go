package binance

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// GetAccount retrieves balances with a signed GET /api/v3/account
func (c *Client) GetAccount(ctx context.Context) (*types.AccountInfo, error) {
	const operation = "get account"

	params := NewParams().Set("timestamp", c.timestamp())

	resp, err := c.signedRequest(ctx, http.MethodGet, accountPath, operation, params)
	if err != nil {
		return nil, err
	}

	account, err := parseAccountResponse(resp.body)
	if err != nil {
		return nil, traderrors.NewParseError(component, operation, err)
	}
	return account, nil
}

// parseAccountResponse decodes the account body into the venue-neutral type
func parseAccountResponse(body []byte) (*types.AccountInfo, error) {
	var raw accountResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode account response: %w", err)
	}
	if raw.Balances == nil {
		return nil, fmt.Errorf("account response has no balances field")
	}

	account := &types.AccountInfo{
		AccountType: raw.AccountType,
		CanTrade:    raw.CanTrade,
		Balances:    make([]types.Balance, 0, len(raw.Balances)),
	}
	if raw.UpdateTime > 0 {
		account.UpdateTime = time.UnixMilli(raw.UpdateTime).UTC()
	}

	for _, b := range raw.Balances {
		free, err := parseAmount(b.Free)
		if err != nil {
			return nil, fmt.Errorf("balance %s free: %w", b.Asset, err)
		}
		locked, err := parseAmount(b.Locked)
		if err != nil {
			return nil, fmt.Errorf("balance %s locked: %w", b.Asset, err)
		}
		account.Balances = append(account.Balances, types.Balance{
			Asset:  b.Asset,
			Free:   free,
			Locked: locked,
		})
	}

	return account, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(trimmed)
}
