package config

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	setEnv(t, map[string]string{
		"ENV":           "test",
		"STORE_DRIVER":  "memory",
		"DB_DSN":        "",
		"REDIS_ADDR":    "",
		"SMTP_HOST":     "",
		"SMTP_FROM":     "",
		"TIMEZONE":      "Europe/Moscow",
		"CLOSED_DAYS":   "sunday",
		"HOLIDAYS":      "",
		"WEEKDAY_HOURS": "",
	})

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.DispatchInterval)
	assert.Equal(t, model.NewTimeOfDay(9, 0), cfg.WorkStart)

	tpl, err := cfg.Schedule()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", tpl.Location.String())
	assert.True(t, tpl.ClosedDays[time.Sunday])
	assert.Equal(t, schedule.Hours{Start: model.NewTimeOfDay(13, 0), End: model.NewTimeOfDay(14, 0)}, tpl.Lunch)
}

func TestFromEnv_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"ENV":                   "test",
		"STORE_DRIVER":          "postgres",
		"DB_DSN":                "postgres://localhost/tours",
		"TIMEZONE":              "UTC",
		"SLOT_DURATION_MINUTES": "30",
		"CLOSED_DAYS":           "sat, Sunday",
		"HOLIDAYS":              "2025-01-01,2025-05-09",
		"WEEKDAY_HOURS":         "friday=10:00-15:00",
		"LUNCH_START":           "",
		"LUNCH_END":             "",
	})

	cfg, err := FromEnv()
	require.NoError(t, err)

	tpl, err := cfg.Schedule()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, tpl.SlotDuration)
	assert.True(t, tpl.ClosedDays[time.Saturday])
	assert.True(t, tpl.ClosedDays[time.Sunday])
	assert.True(t, tpl.Holidays[time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC)])
	assert.Equal(t, model.NewTimeOfDay(10, 0), tpl.WorkHours[time.Friday].Start)
	assert.Equal(t, model.NewTimeOfDay(9, 0), tpl.WorkHours[time.Monday].Start)
	assert.True(t, tpl.Lunch.IsZero())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "postgres without dsn",
			env:  map[string]string{"STORE_DRIVER": "postgres", "DB_DSN": ""},
		},
		{
			name: "unknown driver",
			env:  map[string]string{"STORE_DRIVER": "sqlite"},
		},
		{
			name: "unknown weekday",
			env:  map[string]string{"STORE_DRIVER": "memory", "CLOSED_DAYS": "someday"},
		},
		{
			name: "work hours reversed",
			env:  map[string]string{"STORE_DRIVER": "memory", "WORK_START": "18:00", "WORK_END": "09:00"},
		},
		{
			name: "smtp without sender",
			env:  map[string]string{"STORE_DRIVER": "memory", "SMTP_HOST": "smtp.example.com", "SMTP_FROM": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "test")
			t.Setenv("TIMEZONE", "UTC")
			setEnv(t, tt.env)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
