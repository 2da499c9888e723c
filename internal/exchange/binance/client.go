package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

const (
	MainnetBaseURL = "https://api.binance.com"
	TestnetBaseURL = "https://testnet.binance.vision"

	accountPath = "/api/v3/account"
	orderPath   = "/api/v3/order"

	apiKeyHeader = "X-MBX-APIKEY"

	// DefaultTimeout bounds a single request. Orders are never retried, so a
	// hung connection must not hold the scheduled order past its window.
	DefaultTimeout = 10 * time.Second

	component = "binance"
)

// HTTPDoer is the slice of *http.Client the client needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the configuration for the Binance client
type Config struct {
	Credentials types.Credentials
	Testnet     bool
	// BaseURL overrides the mainnet/testnet host when set
	BaseURL string
	Timeout time.Duration
	// Clock supplies request timestamps; defaults to the wall clock
	Clock      clock.Clock
	HTTPClient HTTPDoer
}

// Client issues signed REST calls against the Binance spot API
type Client struct {
	credentials types.Credentials
	testnet     bool
	baseURL     string
	timeout     time.Duration
	clock       clock.Clock
	httpClient  HTTPDoer
}

// NewClient creates a new Binance client
func NewClient(config Config) *Client {
	baseURL := MainnetBaseURL
	if config.Testnet {
		baseURL = TestnetBaseURL
	}
	if config.BaseURL != "" {
		baseURL = strings.TrimRight(config.BaseURL, "/")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		credentials: config.Credentials,
		testnet:     config.Testnet,
		baseURL:     baseURL,
		timeout:     timeout,
		clock:       clk,
		httpClient:  httpClient,
	}
}

// GetName returns the venue name
func (c *Client) GetName() string {
	return "Binance"
}

// IsTestnet returns whether the client talks to the test network
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

// BaseURL returns the host requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// timestamp returns the current time in epoch milliseconds
func (c *Client) timestamp() string {
	return fmt.Sprintf("%d", c.clock.Now().UTC().UnixMilli())
}

// response is a completed exchange round trip
type response struct {
	status int
	body   []byte
}

// signedRequest signs params and performs exactly one HTTP round trip.
// Non-2xx responses are converted into categorized errors here.
func (c *Client) signedRequest(ctx context.Context, method, path, operation string, params *Params) (*response, error) {
	if !c.credentials.IsComplete() {
		return nil, traderrors.NewAuthError(component, operation, "API key and secret key are required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path + "?" + SignedQuery(params, c.credentials.SecretKey)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, traderrors.NewNetworkError(component, operation, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set(apiKeyHeader, c.credentials.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, traderrors.NewNetworkError(component, operation, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, traderrors.NewNetworkError(component, operation, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, ParseAPIError(operation, resp.StatusCode, body)
	}

	return &response{status: resp.StatusCode, body: body}, nil
}
