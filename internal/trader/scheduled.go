package trader

import (
	"context"
	"sync"
	"time"

	"github.com/ducminhle1904/timed-spot-trader/internal/schedule"
	"github.com/ducminhle1904/timed-spot-trader/pkg/reporting"
	"github.com/ducminhle1904/timed-spot-trader/pkg/types"
)

// ScheduledOrder is an order armed for a future instant
type ScheduledOrder struct {
	service *Service
	handle  schedule.Handle
	target  time.Time
	request types.OrderRequest

	once    sync.Once
	done    chan struct{}
	receipt reporting.Receipt
}

// Schedule arms req to be placed at target. The placement runs detached from
// ctx cancellation so an order that has fired always reports its result.
func (s *Service) Schedule(ctx context.Context, req types.OrderRequest, target time.Time) (*ScheduledOrder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order := &ScheduledOrder{
		service: s,
		target:  target,
		request: req,
		done:    make(chan struct{}),
	}
	jobCtx := context.WithoutCancel(ctx)

	// The handle is published before the timer can fire so the job can log it.
	ready := make(chan struct{})
	order.handle = s.scheduler.Schedule(target, func() {
		<-ready
		s.journal.ScheduleFired(string(order.handle))
		s.updatePending()
		order.finish(s.place(jobCtx, req, target))
	})
	close(ready)

	s.journal.ScheduleArmed(string(order.handle), target, req)
	s.updatePending()
	return order, nil
}

// Handle returns the scheduler handle
func (o *ScheduledOrder) Handle() schedule.Handle {
	return o.handle
}

// Target returns the instant the order fires at
func (o *ScheduledOrder) Target() time.Time {
	return o.target
}

// Request returns the order that will be placed
func (o *ScheduledOrder) Request() types.OrderRequest {
	return o.request
}

// State reports pending, fired or cancelled
func (o *ScheduledOrder) State() schedule.State {
	state, _ := o.service.scheduler.State(o.handle)
	return state
}

// Cancel stops the order if it has not fired. false means the order may
// already have been sent.
func (o *ScheduledOrder) Cancel() bool {
	cancelled := o.service.scheduler.Cancel(o.handle)
	o.service.journal.ScheduleCancelled(string(o.handle), cancelled)
	o.service.updatePending()

	if cancelled {
		o.finish(reporting.Receipt{
			Exchange:     o.service.venue.GetName(),
			Environment:  o.service.venue.GetEnvironment(),
			Request:      o.request,
			ScheduledFor: o.target,
			SubmittedAt:  o.service.clock.Now(),
			Outcome:      reporting.OutcomeCancelled,
		})
	}
	return cancelled
}

// Done is closed once the order has been placed (or failed) or cancelled
func (o *ScheduledOrder) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the outcome is known or ctx is done
func (o *ScheduledOrder) Wait(ctx context.Context) (reporting.Receipt, error) {
	select {
	case <-o.done:
		return o.receipt, o.receipt.Err
	case <-ctx.Done():
		return reporting.Receipt{}, ctx.Err()
	}
}

// Outcome returns the receipt without blocking; ok is false while pending or in flight
func (o *ScheduledOrder) Outcome() (receipt reporting.Receipt, ok bool) {
	select {
	case <-o.done:
		return o.receipt, true
	default:
		return reporting.Receipt{}, false
	}
}

func (o *ScheduledOrder) finish(receipt reporting.Receipt) {
	o.once.Do(func() {
		o.receipt = receipt
		close(o.done)
	})
}
