package reporting

import (
	"time"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// Outcome values written to receipts
const (
	OutcomeAccepted  = "ACCEPTED"
	OutcomeFailed    = "FAILED"
	OutcomeCancelled = "CANCELLED"
	// OutcomeUnknown is used when a cancel lost the race against the timer
	OutcomeUnknown = "UNKNOWN"
)

// Receipt describes one order attempt, placed now or on a schedule
type Receipt struct {
	Exchange    string
	Environment string
	Request     types.OrderRequest
	// ScheduledFor is zero for immediate orders
	ScheduledFor time.Time
	SubmittedAt  time.Time
	Elapsed      time.Duration
	Outcome      string
	Result       *types.OrderResult
	Err          error
}

// OrderID returns the venue order id, or "" when the order was not accepted
func (r Receipt) OrderID() string {
	if r.Result == nil {
		return ""
	}
	return r.Result.OrderID
}

// Status returns the venue status, or the outcome when there is none
func (r Receipt) Status() string {
	if r.Result != nil && r.Result.Status != "" {
		return r.Result.Status
	}
	return r.Outcome
}

// Message is the user facing error text, verbatim from the venue for rejections
func (r Receipt) Message() string {
	return traderrors.UserMessage(r.Err)
}
