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

// ReminderService ставит в очередь напоминания о подтверждённых бронированиях
type ReminderService struct {
	bookingRepo BookingStore
	template    *schedule.Template
	clock       clock.Clock
	window      time.Duration
	logger      *zap.Logger
}

// NewReminderService window - шаг тика планировщика; напоминание получают
// бронирования, чей слот начинается в [now+lead, now+lead+window).
func NewReminderService(bookingRepo BookingStore, template *schedule.Template, clk clock.Clock, window time.Duration, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		bookingRepo: bookingRepo,
		template:    template,
		clock:       clk,
		window:      window,
		logger:      logger,
	}
}

// SendDue ставит напоминания в outbox и возвращает их количество.
// Каждое бронирование отмечается reminder_sent_at в той же транзакции,
// поэтому повторный запуск в том же окне ничего не отправит.
func (s *ReminderService) SendDue(ctx context.Context) (int, error) {
	now := s.clock.Now().In(s.template.Location)
	from := model.WallClock(now.Add(s.template.ReminderLead))
	to := from.Add(s.window)

	bookings, err := s.bookingRepo.DueReminders(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("find due reminders: %w", err)
	}

	sent := 0
	for _, booking := range bookings {
		msg := model.NewNotification(model.NotificationBookingReminder, booking, s.template.Location)

		claimed, err := s.bookingRepo.ClaimReminder(ctx, booking.ID, now, msg)
		if err != nil {
			s.logger.Error("Failed to queue reminder",
				zap.Int64("booking_id", booking.ID),
				zap.Error(err),
			)
			continue
		}
		if !claimed {
			s.logger.Debug("Reminder already queued", zap.Int64("booking_id", booking.ID))
			continue
		}
		sent++
	}

	s.logger.Info("Reminders queued",
		zap.Time("window_from", from),
		zap.Time("window_to", to),
		zap.Int("due", len(bookings)),
		zap.Int("queued", sent),
	)

	return sent, nil
}
