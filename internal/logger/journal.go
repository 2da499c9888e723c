package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// Journal is an append-only JSON record of one trading session.
// Credentials never reach it: only order fields and venue responses are logged.
type Journal struct {
	logger *zap.Logger
	file   *os.File
	path   string

	mu     sync.Mutex
	closed bool
}

// NewJournal opens (or appends to) logDir/trader_<exchange>_<env>_<date>.log
func NewJournal(logDir, exchange, environment string) (*Journal, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("trader_%s_%s_%s.log", exchange, environment, time.Now().Format("2006-01-02"))
	logPath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), zap.InfoLevel)

	j := newJournal(zap.New(core).With(
		zap.String("exchange", exchange),
		zap.String("environment", environment),
	))
	j.file = file
	j.path = logPath
	return j, nil
}

// NewJournalWithCore builds a journal on an existing core
func NewJournalWithCore(core zapcore.Core) *Journal {
	return newJournal(zap.New(core))
}

// Nop returns a journal that discards everything
func Nop() *Journal {
	return newJournal(zap.NewNop())
}

func newJournal(l *zap.Logger) *Journal {
	return &Journal{logger: l.Named("journal")}
}

// Path returns the journal file, empty when not file backed
func (j *Journal) Path() string {
	return j.path
}

// SessionStarted writes the session header entry
func (j *Journal) SessionStarted(mode string) {
	j.logger.Info("session started", zap.String("mode", mode))
}

// BalanceQueried records a balance lookup
func (j *Journal) BalanceQueried(account *types.AccountInfo) {
	j.logger.Info("balance queried",
		zap.Int("assets", len(account.NonZero())),
		zap.Bool("can_trade", account.CanTrade),
	)
}

// OrderSubmitted records a request about to be sent
func (j *Journal) OrderSubmitted(req types.OrderRequest, scheduled bool) {
	j.logger.Info("order submitted", append(orderFields(req), zap.Bool("scheduled", scheduled))...)
}

// OrderAccepted records the venue acknowledgement
func (j *Journal) OrderAccepted(req types.OrderRequest, result *types.OrderResult, elapsed time.Duration) {
	fields := append(orderFields(req),
		zap.String("order_id", result.OrderID),
		zap.String("client_order_id", result.ClientOrderID),
		zap.String("status", result.Status),
		zap.Duration("elapsed", elapsed),
	)
	if len(result.Raw) > 0 {
		fields = append(fields, zap.ByteString("raw", result.Raw))
	}
	j.logger.Info("order accepted", fields...)
}

// OrderFailed records a failed placement with its category
func (j *Journal) OrderFailed(req types.OrderRequest, err error, elapsed time.Duration) {
	fields := append(orderFields(req),
		zap.String("category", string(traderrors.CategoryOf(err))),
		zap.String("message", traderrors.UserMessage(err)),
		zap.Duration("elapsed", elapsed),
	)
	j.logger.Error("order failed", fields...)
}

// ScheduleArmed records a deferred order
func (j *Journal) ScheduleArmed(handle string, target time.Time, req types.OrderRequest) {
	fields := append(orderFields(req),
		zap.String("handle", handle),
		zap.Time("target", target),
	)
	j.logger.Info("schedule armed", fields...)
}

// ScheduleFired records a timer firing
func (j *Journal) ScheduleFired(handle string) {
	j.logger.Info("schedule fired", zap.String("handle", handle))
}

// ScheduleCancelled records a cancel attempt; cancelled is false when the
// order may already have been sent.
func (j *Journal) ScheduleCancelled(handle string, cancelled bool) {
	if cancelled {
		j.logger.Info("schedule cancelled", zap.String("handle", handle))
		return
	}
	j.logger.Warn("schedule cancel lost race, order may have already executed", zap.String("handle", handle))
}

// Error records an error outside order placement
func (j *Journal) Error(context string, err error) {
	j.logger.Error(context,
		zap.String("category", string(traderrors.CategoryOf(err))),
		zap.Error(err),
	)
}

// Close writes the session end entry and closes the file
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	j.logger.Info("session ended")
	_ = j.logger.Sync()

	if j.file != nil {
		return j.file.Close()
	}
	return nil
}

func orderFields(req types.OrderRequest) []zap.Field {
	return []zap.Field{
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.String("type", req.Type()),
		zap.String("time_in_force", req.TimeInForce()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("price", req.Price.String()),
	}
}
