package formatting

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestPluralizePlaces(t *testing.T) {
	tests := map[int]string{
		1:  "место",
		2:  "места",
		4:  "места",
		5:  "мест",
		11: "мест",
		12: "мест",
		21: "место",
		22: "места",
	}
	for n, want := range tests {
		assert.Equal(t, want, PluralizePlaces(n), "n=%d", n)
	}
}

func TestFormatSlotButton(t *testing.T) {
	slot := &model.Slot{
		StartTime:   model.NewTimeOfDay(10, 0),
		EndTime:     model.NewTimeOfDay(11, 30),
		MaxBookings: 1,
	}
	assert.Equal(t, "10:00-11:30", FormatSlotButton(slot))

	slot.MaxBookings = 5
	slot.CurrentBookings = 2
	assert.Equal(t, "10:00-11:30 (3 места)", FormatSlotButton(slot))
}

func TestFormatDaySlots(t *testing.T) {
	day := service.DaySlots{
		Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Slots: []*model.Slot{
			{StartTime: model.NewTimeOfDay(9, 0), EndTime: model.NewTimeOfDay(10, 0), MaxBookings: 1},
		},
	}

	text := FormatDaySlots(day)
	assert.Contains(t, text, "Понедельник, 03.03.2025")
	assert.Contains(t, text, "09:00-10:00")
}

func TestFormatBooking(t *testing.T) {
	b := &model.Booking{
		ID:     7,
		Kind:   model.BookingKindConsultation,
		Status: model.BookingStatusConfirmed,
		Slot: &model.Slot{
			Date:      time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
			StartTime: model.NewTimeOfDay(15, 0),
			EndTime:   model.NewTimeOfDay(16, 0),
		},
	}

	text := FormatBooking(b)
	assert.Contains(t, text, "✅ Запись #7")
	assert.Contains(t, text, "Консультация")
	assert.Contains(t, text, "04.03.2025 15:00-16:00")
	assert.Contains(t, text, "Подтверждена")
}

func TestFormatDateWithWeekday(t *testing.T) {
	assert.Equal(t, "Сб 08.03", FormatDateWithWeekday(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)))
}
