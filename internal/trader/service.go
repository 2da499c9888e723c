package trader

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/internal/exchange"
	"github.com/ducminhle1904/timed-spot-trader/internal/logger"
	"github.com/ducminhle1904/timed-spot-trader/internal/monitoring"
	"github.com/ducminhle1904/timed-spot-trader/internal/schedule"
	"github.com/ducminhle1904/timed-spot-trader/pkg/reporting"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// ReceiptSink persists receipts; *reporting.ExcelReceiptWriter satisfies it
type ReceiptSink interface {
	Append(path string, receipts ...reporting.Receipt) error
}

// Options wires a Service. Exchange is required; the rest have defaults.
type Options struct {
	Exchange  exchange.SpotExchange
	Scheduler *schedule.Scheduler
	Clock     clock.Clock
	Journal   *logger.Journal
	Health    *monitoring.HealthChecker

	Receipts    ReceiptSink
	ReceiptPath string
}

// Service places orders on one venue, now or at a scheduled instant
type Service struct {
	venue     exchange.SpotExchange
	scheduler *schedule.Scheduler
	clock     clock.Clock
	journal   *logger.Journal
	health    *monitoring.HealthChecker

	receipts    ReceiptSink
	receiptPath string
	receiptMu   sync.Mutex
}

// NewService creates a trading service
func NewService(opts Options) *Service {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = schedule.NewScheduler(clk)
	}
	journal := opts.Journal
	if journal == nil {
		journal = logger.Nop()
	}

	return &Service{
		venue:       opts.Exchange,
		scheduler:   scheduler,
		clock:       clk,
		journal:     journal,
		health:      opts.Health,
		receipts:    opts.Receipts,
		receiptPath: opts.ReceiptPath,
	}
}

// Exchange returns the venue orders go to
func (s *Service) Exchange() exchange.SpotExchange {
	return s.venue
}

// Scheduler returns the scheduler deferred orders are armed on
func (s *Service) Scheduler() *schedule.Scheduler {
	return s.scheduler
}

// ShowBalance fetches the account balances
func (s *Service) ShowBalance(ctx context.Context) (*types.AccountInfo, error) {
	account, err := s.venue.GetAccount(ctx)
	if err != nil {
		s.recordError("get account", err)
		return nil, err
	}
	s.journal.BalanceQueried(account)
	return account, nil
}

// PlaceNow submits req immediately in a single attempt
func (s *Service) PlaceNow(ctx context.Context, req types.OrderRequest) (reporting.Receipt, error) {
	if err := req.Validate(); err != nil {
		return reporting.Receipt{}, err
	}
	receipt := s.place(ctx, req, time.Time{})
	return receipt, receipt.Err
}

// place performs the request and records it everywhere. It never returns an
// error separately: the receipt carries it.
func (s *Service) place(ctx context.Context, req types.OrderRequest, scheduledFor time.Time) reporting.Receipt {
	s.journal.OrderSubmitted(req, !scheduledFor.IsZero())

	started := s.clock.Now()
	result, err := s.venue.PlaceLimitOrder(ctx, req)
	elapsed := s.clock.Since(started)

	receipt := reporting.Receipt{
		Exchange:     s.venue.GetName(),
		Environment:  s.venue.GetEnvironment(),
		Request:      req,
		ScheduledFor: scheduledFor,
		SubmittedAt:  started,
		Elapsed:      elapsed,
		Result:       result,
		Err:          err,
	}

	if err != nil {
		receipt.Outcome = reporting.OutcomeFailed
		s.journal.OrderFailed(req, err, elapsed)
		monitoring.RecordOrder(s.venue.GetName(), string(req.Side), monitoring.OutcomeFailed, elapsed)
		s.recordHealthError(err)
		monitoring.RecordError(string(traderrors.CategoryOf(err)))
	} else {
		receipt.Outcome = reporting.OutcomeAccepted
		s.journal.OrderAccepted(req, result, elapsed)
		monitoring.RecordOrder(s.venue.GetName(), string(req.Side), monitoring.OutcomeAccepted, elapsed)
		if s.health != nil {
			s.health.RecordOrder(result.OrderID, started)
		}
	}

	s.writeReceipt(receipt)
	return receipt
}

func (s *Service) writeReceipt(receipt reporting.Receipt) {
	if s.receipts == nil || s.receiptPath == "" {
		return
	}
	s.receiptMu.Lock()
	defer s.receiptMu.Unlock()
	if err := s.receipts.Append(s.receiptPath, receipt); err != nil {
		s.journal.Error("receipt write failed", err)
	}
}

func (s *Service) recordError(operation string, err error) {
	s.journal.Error(operation, err)
	monitoring.RecordError(string(traderrors.CategoryOf(err)))
	s.recordHealthError(err)
}

func (s *Service) recordHealthError(err error) {
	if s.health != nil {
		s.health.RecordError(traderrors.UserMessage(err))
	}
}

func (s *Service) updatePending() {
	if s.health != nil {
		s.health.SetPending(s.scheduler.Active())
	}
}
