package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drive ranges over seq on another goroutine, advancing mock by step after
// every sample so each tick is observed exactly once.
func drive(t *testing.T, mock *clock.Mock, seq func(func(time.Duration) bool), step time.Duration) []time.Duration {
	t.Helper()

	samples := make(chan time.Duration)
	go func() {
		defer close(samples)
		for left := range seq {
			samples <- left
		}
	}()

	var got []time.Duration
	for {
		select {
		case left, ok := <-samples:
			if !ok {
				return got
			}
			got = append(got, left)
			mock.Add(step)
		case <-time.After(2 * time.Second):
			t.Fatalf("countdown stalled after %v", got)
			return got
		}
	}
}

func TestCountdown_StrictlyDecreasingToZero(t *testing.T) {
	mock := clock.NewMock()
	target := mock.Now().Add(3 * time.Second)

	got := drive(t, mock, Countdown(context.Background(), mock, target, time.Second), time.Second)

	assert.Equal(t, []time.Duration{3 * time.Second, 2 * time.Second, time.Second, 0}, got)
}

func TestCountdown_TruncatesToSecond(t *testing.T) {
	mock := clock.NewMock()
	target := mock.Now().Add(2500 * time.Millisecond)

	got := drive(t, mock, Countdown(context.Background(), mock, target, time.Second), time.Second)

	require.NotEmpty(t, got)
	assert.Equal(t, 2*time.Second, got[0])
	assert.Equal(t, time.Duration(0), got[len(got)-1])
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i], got[i-1])
	}
}

func TestCountdown_EndsOnlyAtTarget(t *testing.T) {
	mock := clock.NewMock()
	target := mock.Now().Add(1500 * time.Millisecond)
	s := NewScheduler(mock)
	h := s.Schedule(target, func() {})

	var samples []time.Duration
	ended := make(chan time.Time, 1)
	go func() {
		for left := range Countdown(context.Background(), mock, target, time.Second) {
			samples = append(samples, left)
		}
		ended <- mock.Now()
	}()

	var at time.Time
	for done := false; !done; {
		select {
		case at = <-ended:
			done = true
		case <-time.After(10 * time.Millisecond):
			mock.Add(250 * time.Millisecond)
		}
	}

	assert.False(t, at.Before(target), "countdown ended %v before target", target.Sub(at))
	assert.Equal(t, []time.Duration{time.Second, 0}, samples)

	require.Eventually(t, func() bool {
		state, _ := s.State(h)
		return state == StateFired
	}, eventually, tick, "job should have fired by the time the countdown ends")
}

func TestCountdown_PastTarget(t *testing.T) {
	mock := clock.NewMock()

	var got []time.Duration
	for left := range Countdown(context.Background(), mock, mock.Now().Add(-time.Minute), time.Second) {
		got = append(got, left)
	}
	assert.Equal(t, []time.Duration{0}, got)
}

func TestCountdown_StopsOnCancel(t *testing.T) {
	mock := clock.NewMock()
	ctx, cancel := context.WithCancel(context.Background())

	samples := make(chan time.Duration)
	go func() {
		defer close(samples)
		for left := range Countdown(ctx, mock, mock.Now().Add(time.Minute), time.Second) {
			samples <- left
		}
	}()

	assert.Equal(t, time.Minute, <-samples)
	cancel()

	select {
	case _, ok := <-samples:
		assert.False(t, ok, "no samples after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not stop")
	}
}

func TestCountdown_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := clock.NewMock()
	for range Countdown(ctx, mock, mock.Now().Add(time.Minute), time.Second) {
		t.Fatal("no samples expected")
	}
}

func TestCountdown_ConsumerBreak(t *testing.T) {
	mock := clock.NewMock()

	count := 0
	for range Countdown(context.Background(), mock, mock.Now().Add(time.Minute), 0) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatRemaining(-time.Second))
	assert.Equal(t, "00:00:59", FormatRemaining(59*time.Second+900*time.Millisecond))
	assert.Equal(t, "01:01:01", FormatRemaining(time.Hour+time.Minute+time.Second))
	assert.Equal(t, "23:59:00", FormatRemaining(24*time.Hour-time.Minute))
}
