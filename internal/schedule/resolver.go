package schedule

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
)

// DefaultTimezone is the reference zone schedule times are read in
const DefaultTimezone = "Asia/Shanghai"

// ErrInvalidFormat is wrapped by every Resolve failure
var ErrInvalidFormat = stderrors.New("invalid time format, expected HH:MM")

// LoadLocation loads a named zone. Asia/Shanghai has no DST, so when the host
// has no zoneinfo it falls back to a fixed UTC+8 zone.
func LoadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultTimezone {
		return time.FixedZone("CST", 8*60*60), nil
	}
	return nil, traderrors.NewConfigurationError("schedule", "load timezone",
		fmt.Sprintf("unknown timezone %q", name))
}

// Resolver turns a wall-clock HH:MM into the next matching instant
type Resolver struct {
	clock    clock.Clock
	location *time.Location
}

// NewResolver creates a resolver; nil arguments mean the real clock and Asia/Shanghai
func NewResolver(clk clock.Clock, loc *time.Location) *Resolver {
	if clk == nil {
		clk = clock.New()
	}
	if loc == nil {
		loc, _ = LoadLocation(DefaultTimezone)
	}
	return &Resolver{clock: clk, location: loc}
}

// Location returns the reference zone
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Resolve returns today's HH:MM in the reference zone, or tomorrow's when that
// moment has already passed. The rollover is exactly one calendar day.
func (r *Resolver) Resolve(text string) (time.Time, error) {
	hour, minute, err := ParseClock(text)
	if err != nil {
		return time.Time{}, err
	}

	now := r.clock.Now().In(r.location)
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, r.location)
	if target.Before(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target, nil
}

// ParseClock validates HH:MM and returns its fields
func ParseClock(text string) (hour, minute int, err error) {
	trimmed := strings.TrimSpace(text)
	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 {
		return 0, 0, invalidFormat(text)
	}

	hour, ok := parseField(parts[0], 23)
	if !ok {
		return 0, 0, invalidFormat(text)
	}
	minute, ok = parseField(parts[1], 59)
	if !ok {
		return 0, 0, invalidFormat(text)
	}
	return hour, minute, nil
}

func parseField(s string, max int) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > max {
		return 0, false
	}
	return n, true
}

func invalidFormat(text string) error {
	return &traderrors.TradeError{
		Category:   traderrors.ErrorCategoryInvalidInput,
		Component:  "schedule",
		Operation:  "resolve time",
		Message:    fmt.Sprintf("invalid time %q, expected HH:MM (00:00-23:59)", text),
		Underlying: ErrInvalidFormat,
	}
}
