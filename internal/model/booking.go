package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // Ожидает подтверждения агентством
	BookingStatusConfirmed BookingStatus = "confirmed" // Подтверждено
	BookingStatusCompleted BookingStatus = "completed" // Завершено
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено
)

// IsActive бронирование занимает место в слоте
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

type BookingKind string

const (
	BookingKindAppointment  BookingKind = "appointment"
	BookingKindConsultation BookingKind = "consultation"
)

// Requester кто бронирует: зарегистрированный клиент или анонимный контакт
type Requester struct {
	CustomerID     *int64 `json:"customer_id,omitempty"`
	Name           string `json:"name" validate:"required,max=120"`
	Email          string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,min=6,max=32"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty"`
}

// HasContact есть хотя бы один канал связи
func (r *Requester) HasContact() bool {
	return r.Email != "" || r.Phone != "" || r.TelegramChatID != 0
}

type Booking struct {
	ID             int64         `json:"id"`
	Reference      uuid.UUID     `json:"reference"`
	SlotID         int64         `json:"slot_id"`
	Kind           BookingKind   `json:"kind"`
	Requester      Requester     `json:"requester"`
	Status         BookingStatus `json:"status"`
	ServiceID      *int64        `json:"service_id"`
	Notes          string        `json:"notes"`
	ReminderSentAt *time.Time    `json:"reminder_sent_at"`
	CancelledAt    *time.Time    `json:"cancelled_at"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Заполняется при выборке вместе со слотом (не колонка bookings)
	Slot *Slot `json:"slot,omitempty"`
}
