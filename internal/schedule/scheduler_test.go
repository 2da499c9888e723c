package schedule

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventually = 2 * time.Second
	tick       = 5 * time.Millisecond
)

func TestScheduler_FiresOnceAtTarget(t *testing.T) {
	mock := clock.NewMock()
	s := NewScheduler(mock)

	var runs atomic.Int32
	h := s.Schedule(mock.Now().Add(2*time.Second), func() { runs.Add(1) })

	state, ok := s.State(h)
	require.True(t, ok)
	assert.Equal(t, StatePending, state)
	assert.Equal(t, 1, s.Active())

	mock.Add(time.Second)
	assert.Equal(t, int32(0), runs.Load())

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, eventually, tick)

	state, _ = s.State(h)
	assert.Equal(t, StateFired, state)
	assert.Equal(t, 0, s.Active())

	// cancel after fire neither reruns nor panics
	assert.False(t, s.Cancel(h))
	mock.Add(time.Minute)
	require.NoError(t, s.Wait())
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_CancelBeforeFire(t *testing.T) {
	mock := clock.NewMock()
	s := NewScheduler(mock)

	var runs atomic.Int32
	h := s.Schedule(mock.Now().Add(60*time.Second), func() { runs.Add(1) })

	mock.Add(time.Second)
	assert.True(t, s.Cancel(h))
	assert.False(t, s.Cancel(h), "second cancel reports nothing to cancel")

	state, _ := s.State(h)
	assert.Equal(t, StateCancelled, state)

	mock.Add(2 * time.Minute)
	require.NoError(t, s.Wait())
	assert.Never(t, func() bool { return runs.Load() != 0 }, 50*time.Millisecond, tick)
}

func TestScheduler_PastTargetFiresImmediately(t *testing.T) {
	mock := clock.NewMock()
	s := NewScheduler(mock)

	var runs atomic.Int32
	h := s.Schedule(mock.Now().Add(-time.Hour), func() { runs.Add(1) })

	require.NoError(t, s.Wait())
	assert.Equal(t, int32(1), runs.Load())
	state, _ := s.State(h)
	assert.Equal(t, StateFired, state)
}

func TestScheduler_UnknownHandle(t *testing.T) {
	s := NewScheduler(clock.NewMock())

	assert.False(t, s.Cancel("missing"))
	_, ok := s.State("missing")
	assert.False(t, ok)
	_, ok = s.Target("missing")
	assert.False(t, ok)
}

func TestScheduler_IndependentJobs(t *testing.T) {
	mock := clock.NewMock()
	s := NewScheduler(mock)

	const n = 20
	runs := make([]atomic.Int32, n)
	handles := make([]Handle, n)
	for i := range n {
		handles[i] = s.Schedule(mock.Now().Add(time.Duration(i+1)*time.Second), func() { runs[i].Add(1) })
	}

	seen := make(map[Handle]bool)
	for _, h := range handles {
		assert.False(t, seen[h], "handles are unique")
		seen[h] = true
	}

	for i := 0; i < n; i += 2 {
		require.True(t, s.Cancel(handles[i]))
	}
	assert.Equal(t, n/2, s.Active())

	for range n {
		mock.Add(time.Second)
	}
	require.NoError(t, s.Wait())

	for i := range n {
		want := int32(1)
		if i%2 == 0 {
			want = 0
		}
		assert.Equal(t, want, runs[i].Load(), "job %d", i)
	}
}

func TestScheduler_ActiveCountsOnlyPending(t *testing.T) {
	mock := clock.NewMock()
	s := NewScheduler(mock)

	fired := s.Schedule(mock.Now(), func() {})
	cancelled := s.Schedule(mock.Now().Add(time.Minute), func() {})
	pending := s.Schedule(mock.Now().Add(time.Hour), func() {})
	assert.Equal(t, 2, s.Active())

	require.True(t, s.Cancel(cancelled))
	assert.False(t, s.Cancel(cancelled))
	assert.False(t, s.Cancel(fired))
	assert.Equal(t, 1, s.Active(), "repeated and late cancels do not change the count")

	// terminal entries still answer queries
	state, ok := s.State(fired)
	require.True(t, ok)
	assert.Equal(t, StateFired, state)
	state, ok = s.State(cancelled)
	require.True(t, ok)
	assert.Equal(t, StateCancelled, state)

	mock.Add(time.Hour)
	require.Eventually(t, func() bool { return s.Active() == 0 }, eventually, tick)
	state, _ = s.State(pending)
	assert.Equal(t, StateFired, state)
	require.NoError(t, s.Wait())
}

func TestScheduler_CancelRacesFire(t *testing.T) {
	for range 50 {
		s := NewScheduler(clock.New())

		var runs atomic.Int32
		h := s.Schedule(time.Now().Add(time.Millisecond), func() { runs.Add(1) })

		var cancelled atomic.Bool
		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if s.Cancel(h) {
					cancelled.Store(true)
				}
			}()
		}
		wg.Wait()
		require.NoError(t, s.Wait())

		state, _ := s.State(h)
		if cancelled.Load() {
			assert.Equal(t, int32(0), runs.Load())
			assert.Equal(t, StateCancelled, state)
		} else {
			assert.Equal(t, int32(1), runs.Load())
			assert.Equal(t, StateFired, state)
		}
	}
}

func TestScheduler_WaitReportsPanics(t *testing.T) {
	mock := clock.NewMock()
	s := NewScheduler(mock)

	s.Schedule(mock.Now(), func() { panic("boom") })

	err := s.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestScheduler_Target(t *testing.T) {
	mock := clock.NewMock()
	s := NewScheduler(mock)

	target := mock.Now().Add(time.Hour)
	h := s.Schedule(target, func() {})

	got, ok := s.Target(h)
	require.True(t, ok)
	assert.True(t, target.Equal(got))
	assert.True(t, s.Cancel(h))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "fired", StateFired.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.Equal(t, "unknown", State(9).String())
}
