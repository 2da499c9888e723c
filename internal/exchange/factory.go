package exchange

import (
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/internal/exchange/binance"
	"github.com/ducminhle1904/timed-spot-trader/internal/exchange/bybit"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

const (
	Binance = "binance"
	Bybit   = "bybit"
)

// Config holds what is needed to build any supported venue
type Config struct {
	Name        string
	Testnet     bool
	Credentials types.Credentials
	Timeout     time.Duration
	// BaseURL overrides the venue host, mostly for tests
	BaseURL string
	Clock   clock.Clock
}

var (
	_ SpotExchange = (*binance.Client)(nil)
	_ SpotExchange = (*bybit.Client)(nil)
)

// SupportedExchanges returns the venue names NewSpotExchange accepts
func SupportedExchanges() []string {
	return []string{Binance, Bybit}
}

// NormalizeName lowercases and trims a venue name; empty means binance
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Binance
	}
	return n
}

// NewSpotExchange creates the venue named in config
func NewSpotExchange(config Config) (SpotExchange, error) {
	switch NormalizeName(config.Name) {
	case Binance:
		return binance.NewClient(binance.Config{
			Credentials: config.Credentials,
			Testnet:     config.Testnet,
			BaseURL:     config.BaseURL,
			Timeout:     config.Timeout,
			Clock:       config.Clock,
		}), nil
	case Bybit:
		return bybit.NewClient(bybit.Config{
			Credentials: config.Credentials,
			Testnet:     config.Testnet,
			BaseURL:     config.BaseURL,
			Timeout:     config.Timeout,
		}), nil
	default:
		return nil, traderrors.NewConfigurationError("exchange", "create",
			fmt.Sprintf("exchange %q is not supported (supported: %s)",
				config.Name, strings.Join(SupportedExchanges(), ", ")))
	}
}
