package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationBookingCreated   NotificationKind = "booking_created"
	NotificationBookingConfirmed NotificationKind = "booking_confirmed"
	NotificationBookingCancelled NotificationKind = "booking_cancelled"
	NotificationBookingReminder  NotificationKind = "booking_reminder"
)

type NotificationStatus string

const (
	NotificationStatusPending    NotificationStatus = "pending"
	NotificationStatusProcessing NotificationStatus = "processing"
	NotificationStatusSent       NotificationStatus = "sent"
	NotificationStatusFailed     NotificationStatus = "failed"
)

// Notification исходящее сообщение в outbox. Пишется в той же транзакции,
// что и изменение бронирования, и разбирается диспетчером отдельно.
type Notification struct {
	ID        uuid.UUID          `json:"id"`
	Kind      NotificationKind   `json:"kind"`
	Recipient Requester          `json:"recipient"`
	Payload   map[string]string  `json:"payload"`
	Status    NotificationStatus `json:"status"`
	Attempts  int                `json:"attempts"`
	LastError string             `json:"last_error"`
	CreatedAt time.Time          `json:"created_at"`
	SentAt    *time.Time         `json:"sent_at"`
}

// NewNotification создаёт pending-сообщение о бронировании
func NewNotification(kind NotificationKind, b *Booking, loc *time.Location) *Notification {
	payload := map[string]string{
		"reference": b.Reference.String(),
		"kind":      string(b.Kind),
		"name":      b.Requester.Name,
	}
	if b.Slot != nil {
		payload["date"] = b.Slot.Date.Format(time.DateOnly)
		payload["start_time"] = b.Slot.StartTime.String()
		payload["end_time"] = b.Slot.EndTime.String()
		payload["timezone"] = loc.String()
	}

	return &Notification{
		ID:        uuid.New(),
		Kind:      kind,
		Recipient: b.Requester,
		Payload:   payload,
		Status:    NotificationStatusPending,
	}
}
