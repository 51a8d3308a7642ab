package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/clock"
	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/schedule"
	"go.uber.org/zap"
)

// GenerateResult итог генерации слотов
type GenerateResult struct {
	Created int
	Skipped int
}

// ClearResult итог массового удаления слотов
type ClearResult struct {
	Deleted int
	Kept    int
}

// SlotService генерация слотов по шаблону и администрирование
type SlotService struct {
	slotRepo SlotStore
	template *schedule.Template
	clock    clock.Clock
	logger   *zap.Logger
}

func NewSlotService(slotRepo SlotStore, template *schedule.Template, clk clock.Clock, logger *zap.Logger) *SlotService {
	return &SlotService{
		slotRepo: slotRepo,
		template: template,
		clock:    clk,
		logger:   logger,
	}
}

// Generate создаёт слоты на каждый рабочий день диапазона [from, to].
// Повторный запуск по тому же диапазону ничего не дублирует.
func (s *SlotService) Generate(ctx context.Context, from, to time.Time) (GenerateResult, error) {
	from, to = model.DateOf(from), model.DateOf(to)
	if from.After(to) {
		return GenerateResult{}, fmt.Errorf("%w: from %s is after to %s",
			model.ErrValidation, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	var slots []*model.Slot
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, bucket := range s.template.Buckets(day) {
			slots = append(slots, &model.Slot{
				Date:            day,
				StartTime:       bucket.Start,
				EndTime:         bucket.End,
				IsAvailable:     true,
				MaxBookings:     s.template.MaxBookings,
				CurrentBookings: 0,
			})
		}
	}

	if len(slots) == 0 {
		s.logger.Info("No working buckets in range",
			zap.String("from", from.Format(time.DateOnly)),
			zap.String("to", to.Format(time.DateOnly)),
		)
		return GenerateResult{}, nil
	}

	created, err := s.slotRepo.InsertBatch(ctx, slots)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("insert slots: %w", err)
	}

	result := GenerateResult{Created: created, Skipped: len(slots) - created}

	s.logger.Info("Slots generated",
		zap.String("from", from.Format(time.DateOnly)),
		zap.String("to", to.Format(time.DateOnly)),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// ExtendHorizon генерирует слоты от сегодняшнего дня до конца окна бронирования.
// Вызывается периодически фоновым планировщиком.
func (s *SlotService) ExtendHorizon(ctx context.Context) (GenerateResult, error) {
	from, to := s.template.BookingWindow(s.clock.Now())
	return s.Generate(ctx, from, to)
}

// CreateSlot создаёт слот вручную (оператором)
func (s *SlotService) CreateSlot(ctx context.Context, date time.Time, start, end model.TimeOfDay, maxBookings int, serviceID *int64) (*model.Slot, error) {
	if end <= start {
		return nil, fmt.Errorf("%w: end time must be after start time", model.ErrValidation)
	}
	if maxBookings < 1 {
		return nil, fmt.Errorf("%w: max bookings must be at least 1", model.ErrValidation)
	}

	slot := &model.Slot{
		Date:        model.DateOf(date),
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
		MaxBookings: maxBookings,
		ServiceID:   serviceID,
	}

	if slot.StartsAt(s.template.Location).Before(s.clock.Now()) {
		return nil, fmt.Errorf("cannot create slot: %w", model.ErrSlotInPast)
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.String("date", slot.Date.Format(time.DateOnly)),
		zap.Stringer("start_time", slot.StartTime),
	)

	return slot, nil
}

// SetAvailable включает или выключает слот независимо от вместимости
func (s *SlotService) SetAvailable(ctx context.Context, slotID int64, available bool) error {
	if err := s.slotRepo.SetAvailable(ctx, slotID, available); err != nil {
		return fmt.Errorf("set slot availability: %w", err)
	}

	s.logger.Info("Slot availability changed",
		zap.Int64("slot_id", slotID),
		zap.Bool("is_available", available),
	)

	return nil
}

// DeleteSlot удаляет слот, если на него нет ни одного бронирования
func (s *SlotService) DeleteSlot(ctx context.Context, slotID int64) error {
	if err := s.slotRepo.Delete(ctx, slotID); err != nil {
		return fmt.Errorf("delete slot %d: %w", slotID, err)
	}

	s.logger.Info("Slot deleted", zap.Int64("slot_id", slotID))
	return nil
}

// ClearSlots удаляет все слоты без бронирований. Слоты с бронированиями
// остаются; в этом случае вместе с результатом возвращается ErrSlotHasBookings.
func (s *SlotService) ClearSlots(ctx context.Context) (ClearResult, error) {
	deleted, kept, err := s.slotRepo.DeleteUnbooked(ctx)
	if err != nil {
		return ClearResult{}, fmt.Errorf("clear slots: %w", err)
	}

	result := ClearResult{Deleted: deleted, Kept: kept}

	s.logger.Info("Slots cleared",
		zap.Int("deleted", deleted),
		zap.Int("kept", kept),
	)

	if kept > 0 {
		return result, fmt.Errorf("%d slots kept: %w", kept, model.ErrSlotHasBookings)
	}

	return result, nil
}
