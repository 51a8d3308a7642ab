package state

import "time"

// UserState шаг диалога бронирования
type UserState string

const (
	StateNone UserState = "" // Нет активного диалога

	StateBookingName    UserState = "booking_name"
	StateBookingContact UserState = "booking_contact"
)

// DefaultTTL сколько живёт брошенный диалог
const DefaultTTL = 30 * time.Minute

// Dialog незавершённая заявка на бронирование
type Dialog struct {
	State     UserState
	SlotID    int64
	Name      string
	UpdatedAt time.Time
}
