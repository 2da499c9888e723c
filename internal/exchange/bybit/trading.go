package bybit

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

const categorySpot = "spot"

// Bybit spells sides and types in title case
const (
	sideBuy        = "Buy"
	sideSell       = "Sell"
	orderTypeLimit = "Limit"
)

// BuildOrderParams maps a venue-neutral request onto /v5/order/create parameters
func BuildOrderParams(req types.OrderRequest) map[string]interface{} {
	side := sideBuy
	if req.Side == types.OrderSideSell {
		side = sideSell
	}

	return map[string]interface{}{
		"category":    categorySpot,
		"symbol":      req.Symbol,
		"side":        side,
		"orderType":   orderTypeLimit,
		"qty":         req.Quantity.String(),
		"price":       req.Price.String(),
		"timeInForce": req.TimeInForce(),
	}
}

// PlaceLimitOrder places a spot LIMIT/GTC order in a single attempt
func (c *Client) PlaceLimitOrder(ctx context.Context, req types.OrderRequest) (*types.OrderResult, error) {
	const operation = "place limit order"

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !c.credentials.IsComplete() {
		return nil, traderrors.NewAuthError(component, operation, "API key and secret key are required")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	result, err := c.httpClient.NewUtaBybitServiceWithParams(BuildOrderParams(req)).PlaceOrder(ctx)
	if err != nil {
		return nil, traderrors.NewNetworkError(component, operation, err)
	}

	return parseOrderResponse(operation, req.Symbol, result)
}

func parseOrderResponse(operation, symbol string, response interface{}) (*types.OrderResult, error) {
	resultBytes, err := unwrapResult(operation, response)
	if err != nil {
		if traderrors.Is(err, traderrors.ErrorCategoryParse) {
			return nil, orderStatusUnknown(operation, err)
		}
		return nil, err
	}

	var placed placeOrderResult
	if err := json.Unmarshal(resultBytes, &placed); err != nil {
		return nil, orderStatusUnknown(operation, err)
	}
	if placed.OrderID == "" {
		return nil, orderStatusUnknown(operation, fmt.Errorf("order response has no orderId"))
	}

	return &types.OrderResult{
		OrderID:       placed.OrderID,
		ClientOrderID: placed.OrderLinkID,
		Symbol:        symbol,
		Status:        "New",
		Raw:           resultBytes,
	}, nil
}

// orderStatusUnknown reports an accepted request whose body could not be read
func orderStatusUnknown(operation string, err error) error {
	return &traderrors.TradeError{
		Category:   traderrors.ErrorCategoryNetwork,
		Component:  component,
		Operation:  operation,
		Message:    "order response could not be decoded; check open orders before retrying",
		Underlying: err,
	}
}
