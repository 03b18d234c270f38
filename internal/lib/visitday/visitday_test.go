package visitday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClock(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "valid timezone", timezone: "Europe/Moscow", wantErr: false},
		{name: "utc", timezone: "UTC", wantErr: false},
		{name: "garbage", timezone: "Nowhere/Nowhere", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock, err := NewClock(tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, clock)
			}
		})
	}
}

func TestClock_FromTime_TruncatesToDay(t *testing.T) {
	clock, err := NewClock("UTC")
	require.NoError(t, err)

	moment := time.Date(2025, 6, 15, 23, 59, 58, 0, time.UTC)
	day := clock.FromTime(moment)

	assert.Equal(t, "15-06-2025", day.String())
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), day.Time())
}

func TestClock_FromTime_CrossTimezone(t *testing.T) {
	// 23:00 UTC уже следующий день в Москве
	clock, err := NewClock("Europe/Moscow")
	require.NoError(t, err)

	moment := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	day := clock.FromTime(moment)

	assert.Equal(t, "16-06-2025", day.String())
}

func TestClock_Parse(t *testing.T) {
	clock, err := NewClock("UTC")
	require.NoError(t, err)

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "valid date", value: "01-02-2025", want: "01-02-2025"},
		{name: "wrong layout", value: "2025-02-01", wantErr: true},
		{name: "not a date", value: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := clock.Parse(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, day.String())
		})
	}
}

func TestDay_Comparisons(t *testing.T) {
	clock, err := NewClock("UTC")
	require.NoError(t, err)

	yesterday := clock.FromTime(time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC))
	today := clock.FromTime(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))
	todayEvening := clock.FromTime(time.Date(2025, 6, 15, 22, 0, 0, 0, time.UTC))
	tomorrow := clock.FromTime(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC))

	assert.True(t, yesterday.Before(today))
	assert.False(t, today.Before(yesterday))
	assert.True(t, today.Equal(todayEvening))
	assert.False(t, today.Equal(tomorrow))
	assert.False(t, tomorrow.Before(today))
}
