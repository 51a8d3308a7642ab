package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `s.id, s.date, s.start_time, s.end_time, s.is_available, s.max_bookings, s.current_bookings, s.service_id, s.created_at`

const microsecondsPerMinute = 60_000_000

func toPgTime(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * microsecondsPerMinute, Valid: true}
}

func fromPgTime(t pgtype.Time) model.TimeOfDay {
	return model.TimeOfDay(t.Microseconds / microsecondsPerMinute)
}

// slotScan промежуточные значения для колонок TIME
type slotScan struct {
	slot  model.Slot
	start pgtype.Time
	end   pgtype.Time
}

func (s *slotScan) targets() []any {
	return []any{
		&s.slot.ID,
		&s.slot.Date,
		&s.start,
		&s.end,
		&s.slot.IsAvailable,
		&s.slot.MaxBookings,
		&s.slot.CurrentBookings,
		&s.slot.ServiceID,
		&s.slot.CreatedAt,
	}
}

func (s *slotScan) result() *model.Slot {
	s.slot.StartTime = fromPgTime(s.start)
	s.slot.EndTime = fromPgTime(s.end)
	s.slot.Date = model.DateOf(s.slot.Date)
	return &s.slot
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var s slotScan
	if err := row.Scan(s.targets()...); err != nil {
		return nil, err
	}
	return s.result(), nil
}

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

const insertSlotQuery = `
	INSERT INTO slots (date, start_time, end_time, is_available, max_bookings, current_bookings, service_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func slotArgs(slot *model.Slot) []any {
	return []any{
		model.DateOf(slot.Date),
		toPgTime(slot.StartTime),
		toPgTime(slot.EndTime),
		slot.IsAvailable,
		slot.MaxBookings,
		slot.CurrentBookings,
		slot.ServiceID,
	}
}

// InsertBatch вставляет слоты одной транзакцией, пропуская существующие (date, start_time)
func (r *SlotRepository) InsertBatch(ctx context.Context, slots []*model.Slot) (int, error) {
	created := 0

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, slot := range slots {
			batch.Queue(insertSlotQuery+` ON CONFLICT (date, start_time) DO NOTHING RETURNING id, created_at`, slotArgs(slot)...)
		}

		results := tx.SendBatch(ctx, batch)
		for _, slot := range slots {
			err := results.QueryRow().Scan(&slot.ID, &slot.CreatedAt)
			if base.IsNotFound(err) {
				continue
			}
			if err != nil {
				results.Close()
				return fmt.Errorf("insert slot %s %s: %w", slot.Date.Format("2006-01-02"), slot.StartTime, err)
			}
			created++
		}

		if err := results.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	err := r.Pool().QueryRow(ctx, insertSlotQuery+` RETURNING id, created_at`, slotArgs(slot)...).
		Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return model.ErrSlotExists
		}
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots s WHERE s.id = $1`

	slot, err := scanSlot(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// ListOpen получает доступные слоты с местами в диапазоне дат
func (r *SlotRepository) ListOpen(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots s
		WHERE s.is_available
		  AND s.current_bookings < s.max_bookings
		  AND s.date BETWEEN $1 AND $2
		  AND ($3::bigint IS NULL OR s.service_id IS NULL OR s.service_id = $3)
		ORDER BY s.date, s.start_time
	`

	rows, err := r.Pool().Query(ctx, query, model.DateOf(filter.From), model.DateOf(filter.To), filter.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		var s slotScan
		if err := rows.Scan(s.targets()...); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, s.result())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

// SetAvailable включает или выключает слот
func (r *SlotRepository) SetAvailable(ctx context.Context, id int64, available bool) error {
	affected, err := r.ExecAffected(ctx, `UPDATE slots SET is_available = $2 WHERE id = $1`, id, available)
	if err != nil {
		return fmt.Errorf("update slot availability: %w", err)
	}
	if affected == 0 {
		return model.ErrSlotNotFound
	}
	return nil
}

// Delete удаляет слот, на который нет ни одного бронирования
func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM slots
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM bookings WHERE slot_id = $1)
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return model.ErrSlotHasBookings
		}
		return fmt.Errorf("delete slot: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.Pool().QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM slots WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check slot exists: %w", err)
	}
	if exists {
		return model.ErrSlotHasBookings
	}
	return model.ErrSlotNotFound
}

// DeleteUnbooked удаляет все слоты без бронирований
func (r *SlotRepository) DeleteUnbooked(ctx context.Context) (int, int, error) {
	var deleted, kept int

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM slots s
			WHERE NOT EXISTS (SELECT 1 FROM bookings b WHERE b.slot_id = s.id)
		`)
		if err != nil {
			return fmt.Errorf("delete unbooked slots: %w", err)
		}
		deleted = int(tag.RowsAffected())

		if err := tx.QueryRow(ctx, `SELECT count(*) FROM slots`).Scan(&kept); err != nil {
			return fmt.Errorf("count kept slots: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return deleted, kept, nil
}
