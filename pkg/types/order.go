package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
)

// OrderSide represents buy or sell
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

const (
	// OrderTypeLimit is the only order type this tool places
	OrderTypeLimit = "LIMIT"
	// TimeInForceGTC keeps the order on the book until cancelled
	TimeInForceGTC = "GTC"
)

// ParseOrderSide accepts BUY or SELL in any case
func ParseOrderSide(s string) (OrderSide, error) {
	switch OrderSide(strings.ToUpper(strings.TrimSpace(s))) {
	case OrderSideBuy:
		return OrderSideBuy, nil
	case OrderSideSell:
		return OrderSideSell, nil
	default:
		return "", traderrors.NewInvalidInputError("order", "parse side",
			fmt.Sprintf("side must be BUY or SELL, got %q", s))
	}
}

// OrderRequest is a spot LIMIT/GTC order
type OrderRequest struct {
	Symbol   string
	Side     OrderSide
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// NewLimitOrder parses raw user input into a validated request
func NewLimitOrder(symbol, side, quantity, price string) (OrderRequest, error) {
	orderSide, err := ParseOrderSide(side)
	if err != nil {
		return OrderRequest{}, err
	}

	qty, err := parsePositiveDecimal("quantity", quantity)
	if err != nil {
		return OrderRequest{}, err
	}
	px, err := parsePositiveDecimal("price", price)
	if err != nil {
		return OrderRequest{}, err
	}

	req := OrderRequest{
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		Side:     orderSide,
		Quantity: qty,
		Price:    px,
	}
	if err := req.Validate(); err != nil {
		return OrderRequest{}, err
	}
	return req, nil
}

// Validate must pass before a request is signed
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return traderrors.NewInvalidInputError("order", "validate", "symbol is required")
	}
	if r.Symbol != strings.ToUpper(r.Symbol) {
		return traderrors.NewInvalidInputError("order", "validate",
			fmt.Sprintf("symbol must be uppercase, got %q", r.Symbol))
	}
	if r.Side != OrderSideBuy && r.Side != OrderSideSell {
		return traderrors.NewInvalidInputError("order", "validate",
			fmt.Sprintf("side must be BUY or SELL, got %q", r.Side))
	}
	if !r.Quantity.IsPositive() {
		return traderrors.NewInvalidInputError("order", "validate", "quantity must be greater than zero")
	}
	if !r.Price.IsPositive() {
		return traderrors.NewInvalidInputError("order", "validate", "price must be greater than zero")
	}
	return nil
}

// Type is always LIMIT
func (r OrderRequest) Type() string { return OrderTypeLimit }

// TimeInForce is always GTC
func (r OrderRequest) TimeInForce() string { return TimeInForceGTC }

// Notional returns quantity * price
func (r OrderRequest) Notional() decimal.Decimal {
	return r.Quantity.Mul(r.Price)
}

func (r OrderRequest) String() string {
	return fmt.Sprintf("%s %s %s @ %s", r.Side, r.Quantity.String(), r.Symbol, r.Price.String())
}

// OrderResult is what the venue acknowledged
type OrderResult struct {
	OrderID       string
	ClientOrderID string
	Symbol        string
	Status        string
	TransactTime  time.Time
	// Raw is the untouched response body
	Raw []byte
}

func parsePositiveDecimal(field, value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, traderrors.NewInvalidInputError("order", "parse "+field, field+" is required")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, traderrors.NewInvalidInputError("order", "parse "+field,
			fmt.Sprintf("%s must be a number, got %q", field, value))
	}
	if !d.IsPositive() {
		return decimal.Zero, traderrors.NewInvalidInputError("order", "parse "+field,
			field+" must be greater than zero")
	}
	return d, nil
}
