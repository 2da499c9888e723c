package bybit

import (
	"context"
	"strings"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

const (
	// DefaultTimeout bounds a single SDK call
	DefaultTimeout = 10 * time.Second

	component = "bybit"
)

// Client wraps the Bybit SDK for spot LIMIT/GTC orders
type Client struct {
	httpClient  *bybit_api.Client
	credentials types.Credentials
	testnet     bool
	baseURL     string
	timeout     time.Duration
}

// Config holds the configuration for the Bybit client
type Config struct {
	Credentials types.Credentials
	Testnet     bool
	// BaseURL overrides the mainnet/testnet host when set
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new Bybit client
func NewClient(config Config) *Client {
	baseURL := bybit_api.MAINNET
	if config.Testnet {
		baseURL = bybit_api.TESTNET
	}
	if config.BaseURL != "" {
		baseURL = strings.TrimRight(config.BaseURL, "/")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.Credentials.APIKey,
		config.Credentials.SecretKey,
		bybit_api.WithBaseURL(baseURL),
	)

	return &Client{
		httpClient:  httpClient,
		credentials: config.Credentials,
		testnet:     config.Testnet,
		baseURL:     baseURL,
		timeout:     timeout,
	}
}

// GetName returns the venue name
func (c *Client) GetName() string {
	return "Bybit"
}

// IsTestnet returns whether the client is configured for testnet
func (c *Client) IsTestnet() bool {
	return c.testnet
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	if c.testnet {
		return "testnet"
	}
	return "mainnet"
}

// BaseURL returns the host the SDK talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
