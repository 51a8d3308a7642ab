package model

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: NewTimeOfDay(9, 0)},
		{in: " 13:45 ", want: NewTimeOfDay(13, 45)},
		{in: "00:00", want: 0},
		{in: "23:59", want: NewTimeOfDay(23, 59)},
		{in: "24:00", wantErr: true},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDay(t *testing.T) {
	tod := NewTimeOfDay(9, 5)

	assert.Equal(t, 9, tod.Hour())
	assert.Equal(t, 5, tod.Minute())
	assert.Equal(t, "09:05", tod.String())
	assert.Equal(t, NewTimeOfDay(10, 35), tod.Add(90*time.Minute))
	assert.Equal(t, NewTimeOfDay(18, 20), TimeOfDayOf(time.Date(2025, 3, 3, 18, 20, 59, 0, time.UTC)))

	var decoded TimeOfDay
	require.NoError(t, decoded.Decode("14:00"))
	assert.Equal(t, NewTimeOfDay(14, 0), decoded)
	require.NoError(t, decoded.Decode(""))
	assert.Zero(t, decoded)
	assert.Error(t, decoded.Decode("lunch"))
}

func TestDateOf(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 01:00 в Токио - это ещё предыдущий день по UTC, но дата берётся по зоне момента
	got := DateOf(time.Date(2025, 3, 4, 1, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), got)

	wall := WallClock(time.Date(2025, 3, 4, 1, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2025, 3, 4, 1, 30, 0, 0, time.UTC), wall)
}
