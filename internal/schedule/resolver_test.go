package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	traderrors "github.com/ducminhle1904/timed-spot-trader/internal/errors"
)

func shanghai(t *testing.T) *time.Location {
	t.Helper()
	loc, err := LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func resolverAt(t *testing.T, now time.Time) *Resolver {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(now)
	return NewResolver(mock, now.Location())
}

func TestResolve(t *testing.T) {
	loc := shanghai(t)

	tests := []struct {
		name  string
		now   time.Time
		input string
		want  time.Time
	}{
		{
			name:  "later today",
			now:   time.Date(2024, 3, 10, 17, 59, 0, 0, loc),
			input: "18:00",
			want:  time.Date(2024, 3, 10, 18, 0, 0, 0, loc),
		},
		{
			name:  "already passed rolls to tomorrow",
			now:   time.Date(2024, 3, 10, 18, 1, 0, 0, loc),
			input: "18:00",
			want:  time.Date(2024, 3, 11, 18, 0, 0, 0, loc),
		},
		{
			name:  "exactly now stays today",
			now:   time.Date(2024, 3, 10, 18, 0, 0, 0, loc),
			input: "18:00",
			want:  time.Date(2024, 3, 10, 18, 0, 0, 0, loc),
		},
		{
			name:  "seconds past the minute roll over",
			now:   time.Date(2024, 3, 10, 18, 0, 30, 0, loc),
			input: "18:00",
			want:  time.Date(2024, 3, 11, 18, 0, 0, 0, loc),
		},
		{
			name:  "after midnight",
			now:   time.Date(2024, 3, 10, 23, 30, 0, 0, loc),
			input: "00:10",
			want:  time.Date(2024, 3, 11, 0, 10, 0, 0, loc),
		},
		{
			name:  "month end",
			now:   time.Date(2024, 2, 29, 12, 0, 0, 0, loc),
			input: "09:00",
			want:  time.Date(2024, 3, 1, 9, 0, 0, 0, loc),
		},
		{
			name:  "whitespace and single digits",
			now:   time.Date(2024, 3, 10, 8, 0, 0, 0, loc),
			input: " 9:05 ",
			want:  time.Date(2024, 3, 10, 9, 5, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolverAt(t, tt.now).Resolve(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.False(t, got.Before(tt.now))
			assert.Less(t, got.Sub(tt.now), 24*time.Hour)
		})
	}
}

func TestResolve_UsesReferenceZone(t *testing.T) {
	loc := shanghai(t)

	// 09:30 UTC is 17:30 in Shanghai
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC))
	r := NewResolver(mock, loc)

	got, err := r.Resolve("18:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), got.UTC())
}

func TestResolve_InvalidFormat(t *testing.T) {
	r := NewResolver(clock.NewMock(), shanghai(t))

	for _, input := range []string{"25:61", "abc", "18", "", "24:00", "18:60", "1:2:3", "+1:00", "18:-1", "123:00", "18:5a"} {
		t.Run(input, func(t *testing.T) {
			_, err := r.Resolve(input)
			require.Error(t, err)
			assert.True(t, traderrors.Is(err, traderrors.ErrorCategoryInvalidInput))
			assert.True(t, errors.Is(err, ErrInvalidFormat))
		})
	}
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	_, offset := time.Date(2024, 7, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 8*60*60, offset)

	_, err = LoadLocation("Mars/Olympus_Mons")
	assert.True(t, traderrors.Is(err, traderrors.ErrorCategoryConfiguration))
}
