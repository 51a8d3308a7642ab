package schedule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekTemplate() *Template {
	work := make(map[time.Weekday]Hours)
	for wd := time.Monday; wd <= time.Saturday; wd++ {
		work[wd] = Hours{Start: model.NewTimeOfDay(9, 0), End: model.NewTimeOfDay(18, 0)}
	}
	return &Template{
		Location:     time.UTC,
		SlotDuration: time.Hour,
		MaxBookings:  1,
		AdvanceDays:  7,
		WorkHours:    work,
		Lunch:        Hours{Start: model.NewTimeOfDay(13, 0), End: model.NewTimeOfDay(14, 0)},
		ClosedDays:   map[time.Weekday]bool{time.Saturday: true},
		Holidays:     map[time.Time]bool{day(2025, 3, 5): true},
	}
}

func starts(buckets []Bucket) []string {
	out := make([]string, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.Start.String())
	}
	return out
}

func TestTemplate_Buckets(t *testing.T) {
	tpl := weekTemplate()

	t.Run("skips lunch", func(t *testing.T) {
		buckets := tpl.Buckets(day(2025, 3, 3))
		assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "14:00", "15:00", "16:00", "17:00"}, starts(buckets))
		assert.Equal(t, model.NewTimeOfDay(18, 0), buckets[len(buckets)-1].End)
	})

	t.Run("closed weekday", func(t *testing.T) {
		assert.Empty(t, tpl.Buckets(day(2025, 3, 8)))
	})

	t.Run("weekday without hours", func(t *testing.T) {
		assert.Empty(t, tpl.Buckets(day(2025, 3, 9)))
	})

	t.Run("holiday", func(t *testing.T) {
		assert.Empty(t, tpl.Buckets(day(2025, 3, 5)))
	})

	t.Run("bucket crossing lunch resumes after it", func(t *testing.T) {
		custom := weekTemplate()
		custom.SlotDuration = 90 * time.Minute
		// 09:00-10:30, 10:30-12:00, 12:00-13:30 задевает обед, затем 14:00-15:30, 15:30-17:00
		assert.Equal(t, []string{"09:00", "10:30", "14:00", "15:30"}, starts(custom.Buckets(day(2025, 3, 3))))
	})

	t.Run("no lunch", func(t *testing.T) {
		custom := weekTemplate()
		custom.Lunch = Hours{}
		assert.Len(t, custom.Buckets(day(2025, 3, 3)), 9)
	})

	t.Run("tail shorter than duration is dropped", func(t *testing.T) {
		custom := weekTemplate()
		custom.WorkHours[time.Monday] = Hours{Start: model.NewTimeOfDay(9, 0), End: model.NewTimeOfDay(11, 30)}
		assert.Equal(t, []string{"09:00", "10:00"}, starts(custom.Buckets(day(2025, 3, 3))))
	})
}

func TestTemplate_BookingWindow(t *testing.T) {
	tpl := weekTemplate()
	loc, err := time.LoadLocation("Asia/Vladivostok")
	require.NoError(t, err)
	tpl.Location = loc

	// 20:00 UTC 3 марта - уже 4 марта во Владивостоке
	from, to := tpl.BookingWindow(time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, day(2025, 3, 4), from)
	assert.Equal(t, day(2025, 3, 11), to)
}

func TestTemplate_Validate(t *testing.T) {
	require.NoError(t, weekTemplate().Validate())

	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"no location", func(t *Template) { t.Location = nil }},
		{"zero duration", func(t *Template) { t.SlotDuration = 0 }},
		{"fractional minutes", func(t *Template) { t.SlotDuration = 90 * time.Second }},
		{"no capacity", func(t *Template) { t.MaxBookings = 0 }},
		{"negative advance", func(t *Template) { t.AdvanceDays = -1 }},
		{"negative reminder", func(t *Template) { t.ReminderLead = -time.Hour }},
		{"reversed hours", func(t *Template) {
			t.WorkHours[time.Monday] = Hours{Start: model.NewTimeOfDay(18, 0), End: model.NewTimeOfDay(9, 0)}
		}},
		{"reversed lunch", func(t *Template) {
			t.Lunch = Hours{Start: model.NewTimeOfDay(14, 0), End: model.NewTimeOfDay(13, 0)}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := weekTemplate()
			tt.mutate(tpl)
			assert.Error(t, tpl.Validate())
		})
	}
}
