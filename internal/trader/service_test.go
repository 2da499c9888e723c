package trader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/internal/exchange/binance"
	"github.com/ducminhle1904/timed-spot-trader/internal/logger"
	"github.com/ducminhle1904/timed-spot-trader/internal/monitoring"
	"github.com/ducminhle1904/timed-spot-trader/internal/schedule"
	"github.com/ducminhle1904/timed-spot-trader/pkg/reporting"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

const (
	eventually = 2 * time.Second
	tick       = 5 * time.Millisecond
)

// fakeVenue records every order it is asked to place
type fakeVenue struct {
	mu      sync.Mutex
	orders  []types.OrderRequest
	calls   atomic.Int32
	err     error
	account *types.AccountInfo
}

func (f *fakeVenue) GetName() string        { return "Fake" }
func (f *fakeVenue) GetEnvironment() string { return "testnet" }
func (f *fakeVenue) IsTestnet() bool        { return true }

func (f *fakeVenue) GetAccount(ctx context.Context) (*types.AccountInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.account, nil
}

func (f *fakeVenue) PlaceLimitOrder(ctx context.Context, req types.OrderRequest) (*types.OrderResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.orders = append(f.orders, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &types.OrderResult{OrderID: "42", Symbol: req.Symbol, Status: "NEW"}, nil
}

func testRequest() types.OrderRequest {
	req, err := types.NewLimitOrder("btcusdt", "buy", "0.001", "65000")
	if err != nil {
		panic(err)
	}
	return req
}

func newTestService(venue *fakeVenue, mock *clock.Mock) *Service {
	return NewService(Options{
		Exchange: venue,
		Clock:    mock,
		Health:   monitoring.NewHealthChecker("fake", "testnet"),
	})
}

func TestSchedule_FiresOnceAfterCountdown(t *testing.T) {
	mock := clock.NewMock()
	venue := &fakeVenue{}
	svc := newTestService(venue, mock)

	target := mock.Now().Add(2 * time.Second)
	order, err := svc.Schedule(context.Background(), testRequest(), target)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatePending, order.State())

	samples := make(chan time.Duration)
	go func() {
		defer close(samples)
		for left := range schedule.Countdown(context.Background(), mock, target, time.Second) {
			samples <- left
		}
	}()

	var seen []time.Duration
	for left := range samples {
		seen = append(seen, left)
		if left > 0 {
			mock.Add(time.Second)
		}
	}
	assert.Equal(t, []time.Duration{2 * time.Second, time.Second, 0}, seen)

	receipt, err := order.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reporting.OutcomeAccepted, receipt.Outcome)
	assert.Equal(t, "42", receipt.OrderID())
	assert.True(t, target.Equal(receipt.ScheduledFor))

	assert.Equal(t, schedule.StateFired, order.State())
	assert.False(t, order.Cancel(), "cancel after firing reports possible execution")

	mock.Add(time.Minute)
	require.NoError(t, svc.Scheduler().Wait())
	assert.Equal(t, int32(1), venue.calls.Load())
}

func TestSchedule_CancelBeforeFire(t *testing.T) {
	mock := clock.NewMock()
	venue := &fakeVenue{}
	svc := newTestService(venue, mock)

	order, err := svc.Schedule(context.Background(), testRequest(), mock.Now().Add(60*time.Second))
	require.NoError(t, err)

	mock.Add(time.Second)
	assert.True(t, order.Cancel())
	assert.Equal(t, schedule.StateCancelled, order.State())

	receipt, ok := order.Outcome()
	require.True(t, ok)
	assert.Equal(t, reporting.OutcomeCancelled, receipt.Outcome)

	mock.Add(2 * time.Minute)
	require.NoError(t, svc.Scheduler().Wait())
	assert.Never(t, func() bool { return venue.calls.Load() != 0 }, 50*time.Millisecond, tick)
}

func TestSchedule_PendingHasNoOutcome(t *testing.T) {
	mock := clock.NewMock()
	svc := newTestService(&fakeVenue{}, mock)

	order, err := svc.Schedule(context.Background(), testRequest(), mock.Now().Add(time.Hour))
	require.NoError(t, err)

	_, ok := order.Outcome()
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = order.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.True(t, order.Cancel())
}

func TestSchedule_FiredOrderSurvivesCallerCancellation(t *testing.T) {
	mock := clock.NewMock()
	venue := &fakeVenue{}
	svc := newTestService(venue, mock)

	ctx, cancel := context.WithCancel(context.Background())
	order, err := svc.Schedule(ctx, testRequest(), mock.Now().Add(time.Second))
	require.NoError(t, err)
	cancel()

	mock.Add(time.Second)
	receipt, err := order.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reporting.OutcomeAccepted, receipt.Outcome)
}

func TestSchedule_RejectsInvalidRequest(t *testing.T) {
	svc := newTestService(&fakeVenue{}, clock.NewMock())

	req := testRequest()
	req.Quantity = decimal.Zero

	_, err := svc.Schedule(context.Background(), req, time.Now())
	assert.True(t, traderrors.Is(err, traderrors.ErrorCategoryInvalidInput))
	assert.Equal(t, 0, svc.Scheduler().Active())
}

func TestPlaceNow_RejectedMessageIsVerbatim(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	venue := &fakeVenue{err: traderrors.NewRejectedError("fake", "place limit order", "Insufficient balance")}
	svc := NewService(Options{Exchange: venue, Clock: clock.NewMock(), Journal: logger.NewJournalWithCore(core)})

	receipt, err := svc.PlaceNow(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, "Insufficient balance", traderrors.UserMessage(err))
	assert.Equal(t, reporting.OutcomeFailed, receipt.Outcome)
	assert.Equal(t, "Insufficient balance", receipt.Message())
	assert.Equal(t, int32(1), venue.calls.Load())

	assert.Equal(t, 1, logs.FilterMessage("order failed").Len())
}

func TestShowBalance(t *testing.T) {
	venue := &fakeVenue{account: &types.AccountInfo{Balances: []types.Balance{
		{Asset: "USDT", Free: decimal.NewFromInt(100)},
	}}}
	svc := newTestService(venue, clock.NewMock())

	account, err := svc.ShowBalance(context.Background())
	require.NoError(t, err)
	assert.Len(t, account.NonZero(), 1)

	venue.err = traderrors.NewAuthError("fake", "get account", "Invalid API-key, IP, or permissions for action.")
	_, err = svc.ShowBalance(context.Background())
	assert.True(t, traderrors.Is(err, traderrors.ErrorCategoryAuth))
}

func TestPlaceNow_WritesReceipt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.xlsx")
	svc := NewService(Options{
		Exchange:    &fakeVenue{},
		Clock:       clock.NewMock(),
		Receipts:    reporting.NewExcelReceiptWriter(),
		ReceiptPath: path,
	})

	_, err := svc.PlaceNow(context.Background(), testRequest())
	require.NoError(t, err)

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()
	rows, err := fx.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BTCUSDT", rows[1][3])
}

func TestSchedule_EndToEndAgainstBinance(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.UnixMilli(1700000000000))

	var requests atomic.Int32
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","orderId":7,"status":"NEW"}`))
	}))
	defer server.Close()

	venue := binance.NewClient(binance.Config{
		Credentials: types.Credentials{APIKey: "k", SecretKey: "s"},
		BaseURL:     server.URL,
		Clock:       mock,
	})
	svc := NewService(Options{Exchange: venue, Clock: mock})

	order, err := svc.Schedule(context.Background(), testRequest(), mock.Now().Add(2*time.Second))
	require.NoError(t, err)

	mock.Add(time.Second)
	assert.Equal(t, int32(0), requests.Load())
	mock.Add(time.Second)

	receipt, err := order.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", receipt.OrderID())
	assert.Equal(t, int32(1), requests.Load())
	assert.True(t, strings.Contains(gotQuery, "timestamp=1700000002000&signature="))
}
