package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// BuildOrderParams returns the unsigned order parameters in transmission order:
// symbol, side, type, timeInForce, quantity, price, timestamp.
func BuildOrderParams(req types.OrderRequest, timestamp string) *Params {
	return NewParams().
		Set("symbol", req.Symbol).
		Set("side", string(req.Side)).
		Set("type", req.Type()).
		Set("timeInForce", req.TimeInForce()).
		Set("quantity", req.Quantity.String()).
		Set("price", req.Price.String()).
		Set("timestamp", timestamp)
}

// PlaceLimitOrder places a LIMIT/GTC order with a signed POST /api/v3/order.
// It makes exactly one attempt: a retry could land a duplicate order after the
// intended moment.
func (c *Client) PlaceLimitOrder(ctx context.Context, req types.OrderRequest) (*types.OrderResult, error) {
	const operation = "place limit order"

	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := BuildOrderParams(req, c.timestamp())

	resp, err := c.signedRequest(ctx, http.MethodPost, orderPath, operation, params)
	if err != nil {
		return nil, err
	}

	result, err := parseOrderResponse(resp.body)
	if err != nil {
		// The exchange accepted the request; only the body is unreadable.
		tradeErr := traderrors.NewNetworkError(component, operation, err)
		tradeErr.Message = "order response could not be decoded; check open orders before retrying"
		return nil, tradeErr
	}
	return result, nil
}

func parseOrderResponse(body []byte) (*types.OrderResult, error) {
	var raw orderResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	if raw.OrderID == 0 {
		return nil, fmt.Errorf("order response has no orderId")
	}

	result := &types.OrderResult{
		OrderID:       strconv.FormatInt(raw.OrderID, 10),
		ClientOrderID: raw.ClientOrderID,
		Symbol:        raw.Symbol,
		Status:        raw.Status,
		Raw:           append([]byte(nil), body...),
	}
	if raw.TransactTime > 0 {
		result.TransactTime = time.UnixMilli(raw.TransactTime).UTC()
	}
	return result, nil
}
