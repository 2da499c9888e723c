package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

func TestNewSpotExchange(t *testing.T) {
	creds := types.Credentials{APIKey: "k", SecretKey: "s"}

	tests := []struct {
		name       string
		config     Config
		wantName   string
		wantEnv    string
		wantErrCat traderrors.ErrorCategory
	}{
		{name: "default is binance mainnet", config: Config{Credentials: creds}, wantName: "Binance", wantEnv: "mainnet"},
		{name: "binance testnet", config: Config{Name: "Binance", Testnet: true}, wantName: "Binance", wantEnv: "testnet"},
		{name: "bybit", config: Config{Name: " bybit ", Credentials: creds}, wantName: "Bybit", wantEnv: "mainnet"},
		{name: "unknown", config: Config{Name: "kraken"}, wantErrCat: traderrors.ErrorCategoryConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			venue, err := NewSpotExchange(tt.config)
			if tt.wantErrCat != "" {
				require.Error(t, err)
				assert.True(t, traderrors.Is(err, tt.wantErrCat))
				assert.Contains(t, err.Error(), "binance, bybit")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, venue.GetName())
			assert.Equal(t, tt.wantEnv, venue.GetEnvironment())
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "binance", NormalizeName(""))
	assert.Equal(t, "bybit", NormalizeName("BYBIT"))
}
