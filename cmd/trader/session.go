package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ducminhle1904/timed-spot-trader/cmd/common"
	"github.com/ducminhle1904/timed-spot-trader/internal/config"
	"github.com/ducminhle1904/timed-spot-trader/internal/exchange"
	"github.com/ducminhle1904/timed-spot-trader/internal/logger"
	"github.com/ducminhle1904/timed-spot-trader/internal/monitoring"
	"github.com/ducminhle1904/timed-spot-trader/internal/schedule"
	"github.com/ducminhle1904/timed-spot-trader/internal/trader"
	"github.com/ducminhle1904/timed-spot-trader/pkg/reporting"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// outcomeGrace is added to the request timeout when waiting for a fired order,
// covering the delay between the target instant and the timer callback.
const outcomeGrace = 2 * time.Second

// errNoOutcome means a fired order did not report back in time
var errNoOutcome = errors.New("scheduled order outcome unknown")

// console is what every mode prints to and is timed by
type console struct {
	log   *common.Logger
	out   io.Writer
	clock clock.Clock
	// releaseSignals restores default interrupt handling so a second Ctrl-C exits
	releaseSignals func()
}

func newConsole(log *common.Logger, out io.Writer, releaseSignals func()) *console {
	return &console{log: log, out: out, clock: clock.New(), releaseSignals: releaseSignals}
}

// session is one connected venue plus everything that records what happens on it
type session struct {
	*console
	cfg      *config.Config
	service  *trader.Service
	resolver *schedule.Resolver
	journal  *logger.Journal
	location *time.Location
}

// newSession connects to the venue cfg names. Missing credentials are a CONFIG error.
func newSession(ctx context.Context, cfg *config.Config, con *console, mode string) (*session, error) {
	clk, log := con.clock, con.log

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	creds, err := config.Credentials(cfg.Exchange, cfg.Testnet)
	if err != nil {
		return nil, err
	}

	venue, err := exchange.NewSpotExchange(exchange.Config{
		Name:        cfg.Exchange,
		Testnet:     cfg.Testnet,
		Credentials: creds,
		Timeout:     cfg.RequestTimeout,
		BaseURL:     cfg.BaseURL(cfg.Exchange, cfg.Testnet),
		Clock:       clk,
	})
	if err != nil {
		return nil, err
	}

	journal := logger.Nop()
	if cfg.LogDir != "" {
		journal, err = logger.NewJournal(cfg.LogDir, cfg.Exchange, venue.GetEnvironment())
		if err != nil {
			log.Warn("Trade journal disabled: %v", err)
			journal = logger.Nop()
		} else {
			log.Debug("Trade journal: %s", journal.Path())
		}
	}

	health := monitoring.NewHealthChecker(cfg.Exchange, venue.GetEnvironment())
	if cfg.MetricsAddr != "" {
		srv, err := monitoring.NewServer(cfg.MetricsAddr, health)
		if err != nil {
			_ = journal.Close()
			return nil, fmt.Errorf("metrics server: %w", err)
		}
		log.Info("Metrics on http://%s/metrics", srv.Addr())
		go func() {
			if err := srv.Serve(ctx); err != nil {
				log.Warn("Metrics server stopped: %v", err)
			}
		}()
	}

	opts := trader.Options{
		Exchange: venue,
		Clock:    clk,
		Journal:  journal,
		Health:   health,
	}
	if cfg.ReceiptPath != "" {
		opts.Receipts = reporting.NewExcelReceiptWriter()
		opts.ReceiptPath = cfg.ReceiptPath
	}

	journal.SessionStarted(mode)
	log.Info("Connected to %s %s", venue.GetName(), venue.GetEnvironment())
	if !venue.IsTestnet() {
		log.Warn("MAINNET: orders use real funds")
	}

	return &session{
		console:  con,
		cfg:      cfg,
		service:  trader.NewService(opts),
		resolver: schedule.NewResolver(clk, loc),
		journal:  journal,
		location: loc,
	}, nil
}

func (s *session) close() {
	_ = s.journal.Close()
}

func (s *session) venue() exchange.SpotExchange {
	return s.service.Exchange()
}

// showBalance prints the non-zero balances table
func (s *session) showBalance(ctx context.Context) error {
	account, err := s.service.ShowBalance(ctx)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s %s balances", s.venue().GetName(), s.venue().GetEnvironment())
	reporting.RenderBalances(s.out, title, account)
	return nil
}

// execute places req now, or at target when target is non-zero
func (s *session) execute(ctx context.Context, req types.OrderRequest, target time.Time) error {
	if target.IsZero() {
		s.log.Progress("Placing %s", req)
		receipt, err := s.service.PlaceNow(ctx, req)
		return s.report(receipt, err)
	}
	return s.executeAt(ctx, req, target)
}

// executeAt arms req and redraws the countdown until target. An interrupt
// cancels the order while it is still pending; once it has fired the outcome
// is awaited and reported.
func (s *session) executeAt(ctx context.Context, req types.OrderRequest, target time.Time) error {
	order, err := s.service.Schedule(ctx, req, target)
	if err != nil {
		return err
	}
	s.log.Info("Order scheduled for %s", target.In(s.location).Format("2006-01-02 15:04:05 MST"))

	for left := range schedule.Countdown(ctx, s.clock, target, s.cfg.CountdownInterval) {
		s.log.Inline("Executing in %s", schedule.FormatRemaining(left))
	}
	s.log.EndInline()

	deadline := s.clock.Timer(s.cfg.RequestTimeout + outcomeGrace)
	defer deadline.Stop()

	interrupted := false
	select {
	case <-order.Done():
	case <-deadline.C:
	case <-ctx.Done():
		if order.Cancel() {
			s.log.Warn("Scheduled order cancelled before it was sent")
			receipt, _ := order.Outcome()
			reporting.RenderReceipt(s.out, receipt)
			return errInterrupted
		}
		interrupted = true
		s.log.Warn("Cancel was too late: the order may have already executed")
		if s.releaseSignals != nil {
			s.releaseSignals()
		}
		s.log.Info("Waiting for the exchange response (Ctrl-C again to quit)")
		select {
		case <-order.Done():
		case <-deadline.C:
		}
	}

	receipt, ok := order.Outcome()
	if !ok {
		s.log.Error("No response yet for the scheduled order; check open orders on the exchange")
		return errNoOutcome
	}
	if err := s.report(receipt, receipt.Err); err != nil {
		return err
	}
	if interrupted {
		return errInterrupted
	}
	return nil
}

// report prints the receipt and the user-facing error message
func (s *session) report(receipt reporting.Receipt, err error) error {
	if receipt.Outcome != "" {
		reporting.RenderReceipt(s.out, receipt)
	}
	if err != nil {
		s.log.Error("Order failed: %s", describe(err))
		return err
	}
	s.log.Success("Order %s accepted (%s)", receipt.OrderID(), receipt.Status())
	return nil
}

// resolve turns HH:MM into the next matching instant; empty means now
func (s *session) resolve(text string) (time.Time, error) {
	if text == "" {
		return time.Time{}, nil
	}
	return s.resolver.Resolve(text)
}

// runFlags is the non-interactive mode
func runFlags(ctx context.Context, cfg *config.Config, flags *cliFlags, con *console) error {
	log, out := con.log, con.out
	var (
		req    types.OrderRequest
		target time.Time
		err    error
	)
	if *flags.symbol != "" {
		// Parse before connecting so bad input never needs credentials.
		req, err = types.NewLimitOrder(*flags.symbol, *flags.side, *flags.quantity, *flags.price)
		if err != nil {
			log.Error("%s", describe(err))
			return err
		}
	}

	s, err := newSession(ctx, cfg, con, "flags")
	if err != nil {
		log.Error("%s", describe(err))
		return err
	}
	defer s.close()

	if *flags.showBalance {
		if err := s.showBalance(ctx); err != nil {
			log.Error("Balance query failed: %s", describe(err))
			return err
		}
	}
	if *flags.symbol == "" {
		return nil
	}

	if target, err = s.resolve(*flags.scheduleTime); err != nil {
		log.Error("%s", describe(err))
		return err
	}

	reporting.RenderOrderSummary(out, s.venue().GetName(), s.venue().GetEnvironment(), req, s.inZone(target))
	return s.execute(ctx, req, target)
}

func (s *session) inZone(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(s.location)
}
