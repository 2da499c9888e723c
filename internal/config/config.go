// Package config loads trader settings from defaults, an optional YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/internal/exchange"
	"github.com/ducminhle1904/timed-spot-trader/internal/schedule"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

const component = "config"

// Config holds everything except credentials, which only ever come from the environment
type Config struct {
	Exchange          string        `yaml:"exchange"`
	Testnet           bool          `yaml:"testnet"`
	Timezone          string        `yaml:"timezone"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	CountdownInterval time.Duration `yaml:"countdown_interval"`
	LogDir            string        `yaml:"log_dir"`
	MetricsAddr       string        `yaml:"metrics_addr"`
	ReceiptPath       string        `yaml:"receipt_path"`
	BaseURLs          BaseURLs      `yaml:"base_urls"`
}

// BaseURLs overrides venue hosts, mostly for local mocks
type BaseURLs struct {
	Binance        string `yaml:"binance"`
	BinanceTestnet string `yaml:"binance_testnet"`
	Bybit          string `yaml:"bybit"`
	BybitTestnet   string `yaml:"bybit_testnet"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Exchange:          exchange.Binance,
		Timezone:          schedule.DefaultTimezone,
		RequestTimeout:    10 * time.Second,
		CountdownInterval: schedule.DefaultInterval,
		LogDir:            "logs",
	}
}

// Load applies defaults, then path (when non-empty), then TRADER_* variables, and validates
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return traderrors.WrapError(fmt.Errorf("open config: %w", err),
			traderrors.ErrorCategoryConfiguration, component, "load")
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return traderrors.WrapError(fmt.Errorf("decode yaml %s: %w", path, err),
			traderrors.ErrorCategoryConfiguration, component, "load")
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Exchange = getEnv("TRADER_EXCHANGE", c.Exchange)
	c.Timezone = getEnv("TRADER_TIMEZONE", c.Timezone)
	c.LogDir = getEnv("TRADER_LOG_DIR", c.LogDir)
	c.MetricsAddr = getEnv("TRADER_METRICS_ADDR", c.MetricsAddr)
	c.ReceiptPath = getEnv("TRADER_RECEIPT_PATH", c.ReceiptPath)

	var err error
	if c.Testnet, err = getEnvBool("TRADER_TESTNET", c.Testnet); err != nil {
		return err
	}
	if c.RequestTimeout, err = getEnvDuration("TRADER_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.CountdownInterval, err = getEnvDuration("TRADER_COUNTDOWN_INTERVAL", c.CountdownInterval); err != nil {
		return err
	}
	return nil
}

// Validate checks the settings; every failure is a CONFIG error
func (c *Config) Validate() error {
	c.Exchange = exchange.NormalizeName(c.Exchange)
	supported := false
	for _, name := range exchange.SupportedExchanges() {
		if c.Exchange == name {
			supported = true
			break
		}
	}
	if !supported {
		return traderrors.NewConfigurationError(component, "validate",
			fmt.Sprintf("exchange %q is not supported (supported: %s)",
				c.Exchange, strings.Join(exchange.SupportedExchanges(), ", ")))
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return traderrors.NewConfigurationError(component, "validate", "request_timeout must be positive")
	}
	if c.CountdownInterval <= 0 {
		return traderrors.NewConfigurationError(component, "validate", "countdown_interval must be positive")
	}
	return nil
}

// Location returns the reference timezone for schedule times
func (c *Config) Location() (*time.Location, error) {
	return schedule.LoadLocation(c.Timezone)
}

// BaseURL returns the configured host override for a venue, or ""
func (c *Config) BaseURL(exchangeName string, testnet bool) string {
	switch exchange.NormalizeName(exchangeName) {
	case exchange.Binance:
		if testnet {
			return c.BaseURLs.BinanceTestnet
		}
		return c.BaseURLs.Binance
	case exchange.Bybit:
		if testnet {
			return c.BaseURLs.BybitTestnet
		}
		return c.BaseURLs.Bybit
	}
	return ""
}

// CredentialEnv returns the API key and secret variable names for a venue and network
func CredentialEnv(exchangeName string, testnet bool) (keyVar, secretVar string) {
	switch exchange.NormalizeName(exchangeName) {
	case exchange.Bybit:
		return "BYBIT_API_KEY", "BYBIT_API_SECRET"
	default:
		if testnet {
			return "TESTNET_API_KEY", "TESTNET_SECRET_KEY"
		}
		return "BINANCE_API_KEY", "BINANCE_SECRET_KEY"
	}
}

// Credentials reads the key pair for a venue and network from the environment
func Credentials(exchangeName string, testnet bool) (types.Credentials, error) {
	keyVar, secretVar := CredentialEnv(exchangeName, testnet)
	creds := types.Credentials{
		APIKey:    strings.TrimSpace(os.Getenv(keyVar)),
		SecretKey: strings.TrimSpace(os.Getenv(secretVar)),
	}
	if !creds.IsComplete() {
		return types.Credentials{}, traderrors.NewConfigurationError(component, "credentials",
			fmt.Sprintf("%s and %s must be set", keyVar, secretVar))
	}
	return creds, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal, traderrors.NewConfigurationError(component, "env",
			fmt.Sprintf("%s must be a boolean, got %q", key, val))
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal, traderrors.NewConfigurationError(component, "env",
			fmt.Sprintf("%s must be a duration like 10s, got %q", key, val))
	}
	return d, nil
}
