// Command trader places Binance or Bybit spot LIMIT/GTC orders, immediately or at an HH:MM
// wall-clock time in the configured timezone.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/ducminhle1904/timed-spot-trader/cmd/common"
	"github.com/ducminhle1904/timed-spot-trader/internal/config"
	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
)

const appName = "trader"

// Exit codes
const (
	exitOK          = 0
	exitFailed      = 1
	exitUsage       = 2
	exitInterrupted = 130
)

// errInterrupted is returned when Ctrl-C ended the session
var errInterrupted = errors.New("interrupted")

// cliFlags holds every flag the command accepts
type cliFlags struct {
	common *common.CommonFlags

	exchange    *string
	testnet     *bool
	showBalance *bool

	symbol       *string
	side         *string
	quantity     *string
	price        *string
	scheduleTime *string

	timezone    *string
	timeout     *time.Duration
	receipt     *string
	metricsAddr *string
}

// orderMode reports whether the command runs non-interactively
func (f *cliFlags) orderMode() bool {
	return *f.showBalance || *f.symbol != "" || *f.side != "" || *f.quantity != "" ||
		*f.price != "" || *f.scheduleTime != ""
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	return &cliFlags{
		common: common.RegisterCommonFlags(fs),

		exchange:    fs.String("exchange", "", "Exchange: binance or bybit (overrides config)"),
		testnet:     fs.Bool("testnet", false, "Use the test network"),
		showBalance: fs.Bool("show_balance", false, "Show non-zero balances"),

		symbol:       fs.String("symbol", "", "Trading pair, e.g. BTCUSDT"),
		side:         fs.String("side", "", "BUY or SELL"),
		quantity:     fs.String("quantity", "", "Order quantity"),
		price:        fs.String("price", "", "Limit price"),
		scheduleTime: fs.String("schedule_time", "", "Execute at HH:MM in the configured timezone (default: now)"),

		timezone:    fs.String("timezone", "", "Timezone for -schedule_time (default Asia/Shanghai)"),
		timeout:     fs.Duration("timeout", 0, "Per-request timeout (default 10s)"),
		receipt:     fs.String("receipt", "", "Append order receipts to this .xlsx workbook"),
		metricsAddr: fs.String("metrics-addr", "", "Serve /metrics and /health on this address"),
	}
}

func newUsageFormatter() *common.UsageFormatter {
	return common.NewUsageFormatter(appName, "timed spot LIMIT orders for Binance and Bybit").
		AddExample(appName+" -testnet -show_balance", "Show testnet balances").
		AddExample(appName+" -symbol BTCUSDT -side BUY -quantity 0.001 -price 60000", "Place an order now").
		AddExample(appName+" -symbol BTCUSDT -side SELL -quantity 0.001 -price 70000 -schedule_time 21:30",
			"Place an order at 21:30 Asia/Shanghai").
		AddExample(appName, "Interactive mode").
		AddEnv("BINANCE_API_KEY", "Binance mainnet API key").
		AddEnv("BINANCE_SECRET_KEY", "Binance mainnet secret").
		AddEnv("TESTNET_API_KEY", "Binance testnet API key").
		AddEnv("TESTNET_SECRET_KEY", "Binance testnet secret").
		AddEnv("BYBIT_API_KEY", "Bybit API key").
		AddEnv("BYBIT_API_SECRET", "Bybit API secret").
		AddEnv("TRADER_TIMEZONE", "Timezone for scheduled orders")
}

// validate checks flag combinations before anything touches the network
func (f *cliFlags) validate() *common.FlagValidator {
	v := common.NewFlagValidator()
	if *f.exchange != "" {
		v.ValidateChoice("exchange", *f.exchange, []string{"binance", "bybit"})
	}
	v.ValidateFile("config", *f.common.ConfigFile, false)
	v.RequireTogether(map[string]string{
		"symbol":   *f.symbol,
		"side":     *f.side,
		"quantity": *f.quantity,
		"price":    *f.price,
	})
	if *f.scheduleTime != "" && *f.symbol == "" {
		v.AddError("-schedule_time needs an order (-symbol, -side, -quantity, -price)")
	}
	if *f.timeout < 0 {
		v.AddError("-timeout must be positive")
	}
	return v
}

// applyOverrides copies explicitly set flags onto cfg and revalidates it
func (f *cliFlags) applyOverrides(fs *flag.FlagSet, cfg *config.Config) error {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["exchange"] {
		cfg.Exchange = *f.exchange
	}
	if set["testnet"] {
		cfg.Testnet = *f.testnet
	}
	if set["timezone"] {
		cfg.Timezone = *f.timezone
	}
	if set["timeout"] {
		cfg.RequestTimeout = *f.timeout
	}
	if set["receipt"] {
		cfg.ReceiptPath = *f.receipt
	}
	if set["metrics-addr"] {
		cfg.MetricsAddr = *f.metricsAddr
	}
	if set["log-dir"] {
		cfg.LogDir = *f.common.LogDir
	}
	return cfg.Validate()
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process exit, so it can be driven from tests
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	log := common.NewLogger()
	log.Out = stdout
	log.Err = stderr

	defer func() {
		if r := recover(); r != nil {
			log.Error("unexpected failure: %v", r)
			code = exitFailed
		}
	}()

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := registerFlags(fs)
	formatter := newUsageFormatter()
	fs.Usage = func() { formatter.PrintUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		log.Error("unexpected arguments: %v", fs.Args())
		return exitUsage
	}

	common.SetupLogger(log, flags.common)
	if common.CheckHelpAndVersion(stdout, appName, flags.common, formatter, fs) {
		return exitOK
	}

	if v := flags.validate(); v.HasErrors() {
		v.PrintErrors(stderr)
		return exitUsage
	}

	_ = common.NewEnvLoader(log).LoadEnvFile(*flags.common.EnvFile)

	cfg, err := config.Load(*flags.common.ConfigFile)
	if err == nil {
		err = flags.applyOverrides(fs, cfg)
	}
	if err != nil {
		log.Error("%s", traderrors.UserMessage(err))
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	con := newConsole(log, stdout, stop)
	if flags.orderMode() {
		err = runFlags(ctx, cfg, flags, con)
	} else {
		err = runInteractive(ctx, cfg, con, stdin)
	}
	return exitCode(err)
}

// exitCode maps the session result to a process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errInterrupted):
		return exitInterrupted
	case traderrors.Is(err, traderrors.ErrorCategoryConfiguration),
		traderrors.Is(err, traderrors.ErrorCategoryInvalidInput):
		return exitUsage
	default:
		return exitFailed
	}
}

// describe renders an error for the console. Rejections keep the venue text verbatim.
func describe(err error) string {
	category := traderrors.CategoryOf(err)
	if category == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s (%s)", traderrors.UserMessage(err), category)
}
