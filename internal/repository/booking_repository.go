package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/repository/base"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `b.id, b.reference, b.slot_id, b.kind, b.customer_id, b.contact_name, b.contact_email,
	b.contact_phone, b.telegram_chat_id, b.status, b.service_id, b.notes, b.reminder_sent_at, b.cancelled_at,
	b.created_at, b.updated_at`

const selectBookingWithSlot = `SELECT ` + bookingColumns + `, ` + slotColumns + `
	FROM bookings b
	JOIN slots s ON s.id = b.slot_id`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b    model.Booking
		slot slotScan
	)

	targets := []any{
		&b.ID,
		&b.Reference,
		&b.SlotID,
		&b.Kind,
		&b.Requester.CustomerID,
		&b.Requester.Name,
		&b.Requester.Email,
		&b.Requester.Phone,
		&b.Requester.TelegramChatID,
		&b.Status,
		&b.ServiceID,
		&b.Notes,
		&b.ReminderSentAt,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
	targets = append(targets, slot.targets()...)

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}

	b.Slot = slot.result()
	return &b, nil
}

type BookingRepository struct {
	*base.Repository
}

var _ service.BookingStore = (*BookingRepository)(nil)

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

// Reserve бронирует место: блокирует слот, проверяет его через fn,
// увеличивает счётчик условным UPDATE и создаёт бронирование вместе
// с сообщением outbox. Всё в одной транзакции.
func (r *BookingRepository) Reserve(ctx context.Context, slotID int64, fn service.ReserveFunc) (*model.Booking, error) {
	var booking *model.Booking

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		slot, err := scanSlot(tx.QueryRow(ctx, `SELECT `+slotColumns+` FROM slots s WHERE s.id = $1 FOR UPDATE`, slotID))
		if err != nil {
			if base.IsNotFound(err) {
				return model.ErrSlotNotFound
			}
			return fmt.Errorf("lock slot: %w", err)
		}

		b, msg, err := fn(slot)
		if err != nil {
			return err
		}

		// Условие повторяет проверку fn: счётчик не может уйти за max_bookings
		// даже если слот изменили в обход блокировки
		err = tx.QueryRow(ctx, `
			UPDATE slots
			SET current_bookings = current_bookings + 1
			WHERE id = $1 AND is_available AND current_bookings < max_bookings
			RETURNING current_bookings
		`, slotID).Scan(&slot.CurrentBookings)
		if err != nil {
			if base.IsNotFound(err) {
				return model.ErrSlotFull
			}
			return fmt.Errorf("increment slot bookings: %w", err)
		}

		b.SlotID = slotID
		err = tx.QueryRow(ctx, `
			INSERT INTO bookings (reference, slot_id, kind, customer_id, contact_name, contact_email,
				contact_phone, telegram_chat_id, status, service_id, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at
		`,
			b.Reference,
			b.SlotID,
			b.Kind,
			b.Requester.CustomerID,
			b.Requester.Name,
			b.Requester.Email,
			b.Requester.Phone,
			b.Requester.TelegramChatID,
			b.Status,
			b.ServiceID,
			b.Notes,
		).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		if err := insertNotification(ctx, tx, msg); err != nil {
			return err
		}

		b.Slot = slot
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// Update блокирует бронирование, применяет fn и сохраняет новый статус.
// Отмена активного бронирования уменьшает счётчик слота не ниже нуля.
func (r *BookingRepository) Update(ctx context.Context, id int64, fn service.UpdateFunc) (*model.Booking, error) {
	var booking *model.Booking

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := scanBooking(tx.QueryRow(ctx, selectBookingWithSlot+` WHERE b.id = $1 FOR UPDATE OF b`, id))
		if err != nil {
			if base.IsNotFound(err) {
				return model.ErrBookingNotFound
			}
			return fmt.Errorf("lock booking: %w", err)
		}

		previous := b.Status
		msg, err := fn(b)
		if err != nil {
			return err
		}
		booking = b

		if b.Status == previous {
			return nil
		}

		err = tx.QueryRow(ctx, `
			UPDATE bookings
			SET status = $2, cancelled_at = $3, updated_at = now()
			WHERE id = $1
			RETURNING updated_at
		`, id, b.Status, b.CancelledAt).Scan(&b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}

		if b.Status == model.BookingStatusCancelled && previous.IsActive() {
			err = tx.QueryRow(ctx, `
				UPDATE slots
				SET current_bookings = GREATEST(current_bookings - 1, 0)
				WHERE id = $1
				RETURNING current_bookings
			`, b.SlotID).Scan(&b.Slot.CurrentBookings)
			if err != nil {
				return fmt.Errorf("release slot: %w", err)
			}
		}

		return insertNotification(ctx, tx, msg)
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// GetByID получает бронирование по ID вместе со слотом
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := scanBooking(r.Pool().QueryRow(ctx, selectBookingWithSlot+` WHERE b.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// ListByChat получает бронирования из чата Telegram, новые первыми
func (r *BookingRepository) ListByChat(ctx context.Context, chatID int64) ([]*model.Booking, error) {
	return r.list(ctx, selectBookingWithSlot+`
		WHERE b.telegram_chat_id = $1
		ORDER BY b.id DESC
	`, chatID)
}

// DueReminders подтверждённые бронирования без напоминания со стартом слота в [from, to)
func (r *BookingRepository) DueReminders(ctx context.Context, from, to time.Time) ([]*model.Booking, error) {
	return r.list(ctx, selectBookingWithSlot+`
		WHERE b.status = 'confirmed'
		  AND b.reminder_sent_at IS NULL
		  AND (s.date + s.start_time) >= $1
		  AND (s.date + s.start_time) < $2
		ORDER BY b.id
	`, model.WallClock(from), model.WallClock(to))
}

// ClaimReminder отмечает напоминание и ставит сообщение в outbox одной транзакцией
func (r *BookingRepository) ClaimReminder(ctx context.Context, id int64, at time.Time, msg *model.Notification) (bool, error) {
	claimed := false

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE bookings
			SET reminder_sent_at = $2, updated_at = now()
			WHERE id = $1 AND status = 'confirmed' AND reminder_sent_at IS NULL
		`, id, at)
		if err != nil {
			return fmt.Errorf("mark reminder sent: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		claimed = true
		return insertNotification(ctx, tx, msg)
	})
	if err != nil {
		return false, err
	}

	return claimed, nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}
