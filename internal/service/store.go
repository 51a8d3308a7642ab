package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
)

// SlotStore хранилище слотов
type SlotStore interface {
	// InsertBatch вставляет слоты одной транзакцией, пропуская уже
	// существующие пары (date, start_time). Возвращает число созданных.
	InsertBatch(ctx context.Context, slots []*model.Slot) (int, error)
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	// ListOpen возвращает доступные слоты с местами, упорядоченные по дате и времени
	ListOpen(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error)
	SetAvailable(ctx context.Context, id int64, available bool) error
	// Delete удаляет слот без бронирований, иначе model.ErrSlotHasBookings
	Delete(ctx context.Context, id int64) error
	// DeleteUnbooked удаляет все слоты без бронирований
	DeleteUnbooked(ctx context.Context) (deleted int, kept int, err error)
}

// ReserveFunc вызывается хранилищем под блокировкой строки слота.
// Возвращает бронирование для вставки и сообщение для outbox.
type ReserveFunc func(slot *model.Slot) (*model.Booking, *model.Notification, error)

// UpdateFunc вызывается под блокировкой строки бронирования. Функция может
// сменить booking.Status; если статус не изменился, хранилище ничего не пишет.
type UpdateFunc func(booking *model.Booking) (*model.Notification, error)

// BookingStore хранилище бронирований. Все методы изменения атомарны:
// счётчик слота, бронирование и outbox меняются в одной транзакции.
type BookingStore interface {
	// Reserve блокирует слот, вызывает fn и увеличивает current_bookings
	// условным обновлением. Если мест нет - model.ErrSlotFull.
	Reserve(ctx context.Context, slotID int64, fn ReserveFunc) (*model.Booking, error)
	// Update блокирует бронирование и применяет fn. Переход в cancelled
	// уменьшает счётчик слота (не ниже нуля).
	Update(ctx context.Context, id int64, fn UpdateFunc) (*model.Booking, error)
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	ListByChat(ctx context.Context, chatID int64) ([]*model.Booking, error)
	// DueReminders подтверждённые бронирования без напоминания, чей слот
	// начинается в [from, to) по настенным часам
	DueReminders(ctx context.Context, from, to time.Time) ([]*model.Booking, error)
	// ClaimReminder помечает напоминание отправленным и пишет сообщение в outbox.
	// false - напоминание уже было отмечено другим запуском.
	ClaimReminder(ctx context.Context, id int64, at time.Time, msg *model.Notification) (bool, error)
}
