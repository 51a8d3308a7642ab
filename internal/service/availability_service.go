package service

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/clock"
	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/schedule"
	"go.uber.org/zap"
)

// DaySlots открытые слоты одного дня
type DaySlots struct {
	Date  time.Time     `json:"date"`
	Slots []*model.Slot `json:"slots"`
}

// AvailabilityQuery параметры поиска свободных слотов
type AvailabilityQuery struct {
	From      time.Time
	To        time.Time
	ServiceID *int64
}

// AvailabilityService вычисляет доступные для записи слоты
type AvailabilityService struct {
	slotRepo SlotStore
	template *schedule.Template
	clock    clock.Clock
	logger   *zap.Logger
}

func NewAvailabilityService(slotRepo SlotStore, template *schedule.Template, clk clock.Clock, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		slotRepo: slotRepo,
		template: template,
		clock:    clk,
		logger:   logger,
	}
}

// Days возвращает ленивую последовательность дней со свободными слотами.
// Запрос к хранилищу выполняется при обходе; повторный обход запрашивает заново.
// Ошибка отдаётся последним элементом последовательности.
func (s *AvailabilityService) Days(ctx context.Context, q AvailabilityQuery) iter.Seq2[DaySlots, error] {
	return func(yield func(DaySlots, error) bool) {
		slots, err := s.openSlots(ctx, q)
		if err != nil {
			yield(DaySlots{}, err)
			return
		}

		var current DaySlots
		for _, slot := range slots {
			if !current.Date.IsZero() && !slot.Date.Equal(current.Date) {
				if !yield(current, nil) {
					return
				}
				current = DaySlots{}
			}
			current.Date = slot.Date
			current.Slots = append(current.Slots, slot)
		}
		if len(current.Slots) > 0 {
			yield(current, nil)
		}
	}
}

// ListAvailable собирает Days в срез
func (s *AvailabilityService) ListAvailable(ctx context.Context, q AvailabilityQuery) ([]DaySlots, error) {
	var days []DaySlots
	for day, err := range s.Days(ctx, q) {
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func (s *AvailabilityService) openSlots(ctx context.Context, q AvailabilityQuery) ([]*model.Slot, error) {
	now := s.clock.Now().In(s.template.Location)
	windowFrom, windowTo := s.template.BookingWindow(now)

	// Пустые границы означают всё окно бронирования
	from, to := windowFrom, windowTo
	if !q.From.IsZero() {
		from = model.DateOf(q.From)
	}
	if !q.To.IsZero() {
		to = model.DateOf(q.To)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from %s is after to %s",
			model.ErrValidation, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	if from.Before(windowFrom) {
		from = windowFrom
	}
	if to.After(windowTo) {
		to = windowTo
	}
	if from.After(to) {
		return nil, nil
	}

	slots, err := s.slotRepo.ListOpen(ctx, model.SlotFilter{
		From:      from,
		To:        to,
		ServiceID: q.ServiceID,
	})
	if err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}

	today := s.template.Today(now)
	nowOfDay := model.TimeOfDayOf(now)

	result := slots[:0]
	for _, slot := range slots {
		if !slot.IsOpen() || !slot.MatchesService(q.ServiceID) {
			continue
		}
		// Сегодня показываем только слоты, которые ещё не начались
		if slot.Date.Equal(today) && slot.StartTime <= nowOfDay {
			continue
		}
		result = append(result, slot)
	}

	s.logger.Debug("Availability computed",
		zap.String("from", from.Format(time.DateOnly)),
		zap.String("to", to.Format(time.DateOnly)),
		zap.Int("slots", len(result)),
	)

	return result, nil
}
