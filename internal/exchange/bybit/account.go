package bybit

import (
	"context"
	"fmt"
	"strings"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// AccountTypeUnified is the only wallet spot trading uses on v5
const AccountTypeUnified = "UNIFIED"

// GetAccount retrieves the unified wallet balances
func (c *Client) GetAccount(ctx context.Context) (*types.AccountInfo, error) {
	const operation = "get account"

	if !c.credentials.IsComplete() {
		return nil, traderrors.NewAuthError(component, operation, "API key and secret key are required")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := map[string]interface{}{
		"accountType": AccountTypeUnified,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetAccountWallet(ctx)
	if err != nil {
		return nil, traderrors.NewNetworkError(component, operation, err)
	}

	return parseAccountResponse(operation, result)
}

// unwrapResult checks retCode and re-encodes the generic result object
func unwrapResult(operation string, response interface{}) ([]byte, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok || serverResp == nil {
		return nil, traderrors.NewParseError(component, operation,
			fmt.Errorf("unexpected response type %T", response))
	}

	if err := ParseAPIError(operation, serverResp.RetCode, serverResp.RetMsg); err != nil {
		return nil, err
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, traderrors.NewParseError(component, operation, fmt.Errorf("marshal result: %w", err))
	}
	return resultBytes, nil
}

func parseAccountResponse(operation string, response interface{}) (*types.AccountInfo, error) {
	resultBytes, err := unwrapResult(operation, response)
	if err != nil {
		return nil, err
	}

	var wallet walletBalanceResult
	if err := json.Unmarshal(resultBytes, &wallet); err != nil {
		return nil, traderrors.NewParseError(component, operation, err)
	}
	if len(wallet.List) == 0 {
		return nil, traderrors.NewParseError(component, operation, fmt.Errorf("wallet balance has no accounts"))
	}

	entry := wallet.List[0]
	account := &types.AccountInfo{
		AccountType: entry.AccountType,
		CanTrade:    true,
		Balances:    make([]types.Balance, 0, len(entry.Coin)),
	}

	for _, coin := range entry.Coin {
		total, err := parseAmount(coin.WalletBalance)
		if err != nil {
			return nil, traderrors.NewParseError(component, operation,
				fmt.Errorf("balance %s walletBalance: %w", coin.Coin, err))
		}
		locked, err := parseAmount(coin.Locked)
		if err != nil {
			return nil, traderrors.NewParseError(component, operation,
				fmt.Errorf("balance %s locked: %w", coin.Coin, err))
		}
		account.Balances = append(account.Balances, types.Balance{
			Asset:  coin.Coin,
			Free:   total.Sub(locked),
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
