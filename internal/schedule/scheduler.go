package schedule

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/ducminhle1904/timed-spot-trader/internal/monitoring"
)

// State of a scheduled job. Pending is the only state that can change.
type State int32

const (
	StatePending State = iota
	StateFired
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFired:
		return "fired"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Handle identifies a scheduled job
type Handle string

// entry is one slot of the scheduler arena
type entry struct {
	target    time.Time
	state     atomic.Int32
	timer     *clock.Timer
	fired     chan struct{}
	cancelled chan struct{}
}

func (e *entry) transition(to State) bool {
	return e.state.CompareAndSwap(int32(StatePending), int32(to))
}

// Scheduler runs each job at most once at its target instant.
// Jobs run on goroutines tracked by a conc.WaitGroup; a panicking job is
// reported by Wait instead of taking the process down.
//
// Entries stay in the arena for the life of the scheduler so State and Cancel
// keep answering for fired and cancelled handles. The pending count is kept
// separately and never requires a scan.
type Scheduler struct {
	clock clock.Clock

	mu      sync.Mutex
	jobs    map[Handle]*entry
	pending atomic.Int64

	wg conc.WaitGroup
}

// NewScheduler creates a scheduler driven by clk (the real clock when nil)
func NewScheduler(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		clock: clk,
		jobs:  make(map[Handle]*entry),
	}
}

// Schedule arms job to run once at target. Targets in the past fire immediately.
func (s *Scheduler) Schedule(target time.Time, job func()) Handle {
	h := Handle(uuid.NewString())
	e := &entry{
		target:    target,
		fired:     make(chan struct{}),
		cancelled: make(chan struct{}),
	}

	s.mu.Lock()
	s.jobs[h] = e
	s.mu.Unlock()
	s.pending.Add(1)

	s.wg.Go(func() {
		select {
		case <-e.fired:
			job()
		case <-e.cancelled:
		}
	})

	monitoring.RecordScheduleEvent(monitoring.EventScheduled)
	s.updatePending()

	delay := target.Sub(s.clock.Now())
	if delay <= 0 {
		s.fire(e)
		return h
	}

	// Publish the timer under the lock so Cancel never sees a half-built entry.
	s.mu.Lock()
	e.timer = s.clock.AfterFunc(delay, func() { s.fire(e) })
	s.mu.Unlock()

	return h
}

func (s *Scheduler) fire(e *entry) {
	if !e.transition(StateFired) {
		return
	}
	s.pending.Add(-1)
	close(e.fired)
	monitoring.RecordScheduleEvent(monitoring.EventFired)
	s.updatePending()
}

// Cancel stops a pending job. It returns false when the job already fired,
// was already cancelled or is unknown; the job is never run twice.
func (s *Scheduler) Cancel(h Handle) bool {
	s.mu.Lock()
	e, ok := s.jobs[h]
	var timer *clock.Timer
	if ok {
		timer = e.timer
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	if !e.transition(StateCancelled) {
		return false
	}
	s.pending.Add(-1)
	if timer != nil {
		timer.Stop()
	}
	close(e.cancelled)
	monitoring.RecordScheduleEvent(monitoring.EventCancelled)
	s.updatePending()
	return true
}

// State reports the state of h; ok is false for unknown handles
func (s *Scheduler) State(h Handle) (state State, ok bool) {
	s.mu.Lock()
	e, ok := s.jobs[h]
	s.mu.Unlock()
	if !ok {
		return 0, false
	}
	return State(e.state.Load()), true
}

// Target returns the instant h was armed for
func (s *Scheduler) Target(h Handle) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[h]
	if !ok {
		return time.Time{}, false
	}
	return e.target, true
}

// Active returns the number of pending jobs
func (s *Scheduler) Active() int {
	return int(s.pending.Load())
}

// Wait blocks until every scheduled job has run or been cancelled.
// A job panic is returned as an error.
func (s *Scheduler) Wait() error {
	if r := s.wg.WaitAndRecover(); r != nil {
		return r.AsError()
	}
	return nil
}

func (s *Scheduler) updatePending() {
	monitoring.SetPendingJobs(s.Active())
}
