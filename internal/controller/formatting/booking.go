package formatting

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/service"
)

// FormatSlotButton текст кнопки слота: "10:00-11:00 (2 места)"
func FormatSlotButton(slot *model.Slot) string {
	text := FormatTimeRange(slot.StartTime, slot.EndTime)
	if slot.MaxBookings > 1 {
		text += fmt.Sprintf(" (%d %s)", slot.Remaining(), PluralizePlaces(slot.Remaining()))
	}
	return text
}

// FormatDaySlots заголовок дня со списком свободных окон
func FormatDaySlots(day service.DaySlots) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 %s, %s\n", GetWeekdayName(day.Date.Weekday()), FormatDate(day.Date))
	for _, slot := range day.Slots {
		fmt.Fprintf(&sb, "  🟢 %s\n", FormatSlotButton(slot))
	}
	return sb.String()
}

// FormatBooking форматирует бронирование для отображения
func FormatBooking(booking *model.Booking) string {
	display := GetBookingStatusDisplay(booking.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Запись #%d\n", display.Emoji, booking.ID)
	fmt.Fprintf(&sb, "🧭 %s\n", GetBookingKindName(booking.Kind))
	if booking.Slot != nil {
		fmt.Fprintf(&sb, "📅 %s %s\n",
			FormatDate(booking.Slot.Date),
			FormatTimeRange(booking.Slot.StartTime, booking.Slot.EndTime),
		)
	}
	fmt.Fprintf(&sb, "📊 Статус: %s", display.Text)
	return sb.String()
}
