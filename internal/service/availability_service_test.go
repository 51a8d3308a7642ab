package service_test

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityService_ListAvailable(t *testing.T) {
	e := newEnv(t)
	e.generateWeek(t)

	days, err := e.availability.ListAvailable(e.ctx, service.AvailabilityQuery{})
	require.NoError(t, err)

	// Пн (после 10:30), Вт, Ср, Чт, Пт; суббота праздник, воскресенье выходной
	require.Len(t, days, 5)
	assert.Equal(t, date(2025, 3, 3), days[0].Date)
	assert.Equal(t, date(2025, 3, 7), days[4].Date)

	// Сегодня остаются только слоты, которые ещё не начались
	require.Len(t, days[0].Slots, 6)
	assert.Equal(t, model.NewTimeOfDay(11, 0), days[0].Slots[0].StartTime)

	for _, day := range days {
		for i, slot := range day.Slots {
			assert.Equal(t, day.Date, slot.Date)
			if i > 0 {
				assert.Less(t, day.Slots[i-1].StartTime, slot.StartTime)
			}
		}
	}
}

func TestAvailabilityService_ExcludesFullAndClosed(t *testing.T) {
	e := newEnv(t)
	e.generateWeek(t)

	booked := e.slotAt(t, date(2025, 3, 4), 9)
	_, err := e.bookings.Reserve(e.ctx, booked.ID, anna())
	require.NoError(t, err)

	closed := e.slotAt(t, date(2025, 3, 4), 10)
	require.NoError(t, e.slots.SetAvailable(e.ctx, closed.ID, false))

	days, err := e.availability.ListAvailable(e.ctx, service.AvailabilityQuery{
		From: date(2025, 3, 4),
		To:   date(2025, 3, 4),
	})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Len(t, days[0].Slots, 6)
	for _, slot := range days[0].Slots {
		assert.NotEqual(t, booked.ID, slot.ID)
		assert.NotEqual(t, closed.ID, slot.ID)
	}
}

func TestAvailabilityService_ClampsToBookingWindow(t *testing.T) {
	e := newEnv(t)

	_, err := e.slots.Generate(e.ctx, date(2025, 2, 24), date(2025, 3, 31))
	require.NoError(t, err)

	days, err := e.availability.ListAvailable(e.ctx, service.AvailabilityQuery{
		From: date(2025, 2, 24),
		To:   date(2025, 3, 31),
	})
	require.NoError(t, err)
	require.NotEmpty(t, days)

	assert.Equal(t, date(2025, 3, 3), days[0].Date, "past days are excluded")
	assert.Equal(t, date(2025, 3, 17), days[len(days)-1].Date, "today + 14 days is the last bookable date")
}

func TestAvailabilityService_OutsideWindow(t *testing.T) {
	e := newEnv(t)
	e.generateWeek(t)

	days, err := e.availability.ListAvailable(e.ctx, service.AvailabilityQuery{
		From: date(2025, 4, 1),
		To:   date(2025, 4, 30),
	})
	require.NoError(t, err)
	assert.Empty(t, days)

	_, err = e.availability.ListAvailable(e.ctx, service.AvailabilityQuery{
		From: date(2025, 3, 6),
		To:   date(2025, 3, 4),
	})
	assert.True(t, model.IsValidation(err))
}

func TestAvailabilityService_ServiceFilter(t *testing.T) {
	e := newEnv(t)
	tours, visas := int64(1), int64(2)

	_, err := e.slots.CreateSlot(e.ctx, date(2025, 3, 5), model.NewTimeOfDay(10, 0), model.NewTimeOfDay(11, 0), 1, &tours)
	require.NoError(t, err)
	_, err = e.slots.CreateSlot(e.ctx, date(2025, 3, 5), model.NewTimeOfDay(11, 0), model.NewTimeOfDay(12, 0), 1, &visas)
	require.NoError(t, err)
	_, err = e.slots.CreateSlot(e.ctx, date(2025, 3, 5), model.NewTimeOfDay(12, 0), model.NewTimeOfDay(13, 0), 1, nil)
	require.NoError(t, err)

	days, err := e.availability.ListAvailable(e.ctx, service.AvailabilityQuery{ServiceID: &tours})
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Slots, 2)
	assert.Equal(t, model.NewTimeOfDay(10, 0), days[0].Slots[0].StartTime)
	assert.Equal(t, model.NewTimeOfDay(12, 0), days[0].Slots[1].StartTime)

	all, err := e.availability.ListAvailable(e.ctx, service.AvailabilityQuery{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Slots, 3)
}

func TestAvailabilityService_DaysIsLazy(t *testing.T) {
	e := newEnv(t)
	e.generateWeek(t)

	seq := e.availability.Days(e.ctx, service.AvailabilityQuery{})

	// Досрочный выход из обхода
	var first service.DaySlots
	for day, err := range seq {
		require.NoError(t, err)
		first = day
		break
	}
	assert.Equal(t, date(2025, 3, 3), first.Date)

	// Повторный обход видит изменения, сделанные после создания последовательности
	e.clock.Set(time.Date(2025, 3, 4, 8, 0, 0, 0, moscow))

	var dates []time.Time
	for day, err := range seq {
		require.NoError(t, err)
		dates = append(dates, day.Date)
	}
	require.NotEmpty(t, dates)
	assert.Equal(t, date(2025, 3, 4), dates[0])
	assert.Len(t, dates, 4)
}
