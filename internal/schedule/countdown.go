package schedule

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultInterval is the countdown sampling period
const DefaultInterval = time.Second

// Countdown yields the time left until target, truncated to the second: once
// immediately, then every interval, skipping a value equal to the previous one.
// The sequence ends when target is reached, with a final zero sample unless
// zero was the last value yielded, or silently when ctx is done. Nothing is
// sampled until the caller ranges over it.
func Countdown(ctx context.Context, clk clock.Clock, target time.Time, interval time.Duration) iter.Seq[time.Duration] {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	return func(yield func(time.Duration) bool) {
		if ctx.Err() != nil {
			return
		}

		ticker := clk.Ticker(interval)
		defer ticker.Stop()

		last := time.Duration(-1)
		for {
			left := target.Sub(clk.Now())
			if left <= 0 {
				if last != 0 {
					yield(0)
				}
				return
			}

			if shown := left.Truncate(time.Second); shown != last {
				if !yield(shown) {
					return
				}
				last = shown
			}

			// wake at target even when it falls between ticks
			deadline := clk.Timer(left)
			select {
			case <-ctx.Done():
				deadline.Stop()
				return
			case <-ticker.C:
			case <-deadline.C:
			}
			deadline.Stop()
		}
	}
}

// FormatRemaining renders d as HH:MM:SS
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}
