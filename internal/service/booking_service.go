package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tour_booking/internal/clock"
	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/schedule"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReserveRequest данные заявки на бронирование
type ReserveRequest struct {
	Kind      model.BookingKind `validate:"omitempty,oneof=appointment consultation"`
	Requester model.Requester
	ServiceID *int64
	Notes     string `validate:"max=2000"`
}

// CancelResult итог отмены
type CancelResult struct {
	Booking          *model.Booking
	AlreadyCancelled bool
}

type BookingService struct {
	slotRepo    SlotStore
	bookingRepo BookingStore
	template    *schedule.Template
	clock       clock.Clock
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewBookingService(
	slotRepo SlotStore,
	bookingRepo BookingStore,
	template *schedule.Template,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		template:    template,
		clock:       clk,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// Reserve бронирует одно место в слоте. Проверки и увеличение счётчика
// выполняются в одной транзакции под блокировкой слота, поэтому конкурентные
// вызовы не могут превысить max_bookings. Бронирование создаётся в статусе
// pending: подтверждение - отдельный внешний шаг (Confirm).
func (s *BookingService) Reserve(ctx context.Context, slotID int64, req ReserveRequest) (*model.Booking, error) {
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	if req.Kind == "" {
		req.Kind = model.BookingKindAppointment
	}

	now := s.clock.Now()

	booking, err := s.bookingRepo.Reserve(ctx, slotID, func(slot *model.Slot) (*model.Booking, *model.Notification, error) {
		if !slot.IsAvailable {
			return nil, nil, model.ErrSlotUnavailable
		}
		if !slot.StartsAt(s.template.Location).After(now) {
			return nil, nil, model.ErrSlotInPast
		}
		if slot.IsFull() {
			return nil, nil, model.ErrSlotFull
		}
		if !slot.MatchesService(req.ServiceID) {
			return nil, nil, fmt.Errorf("%w: slot is reserved for another service", model.ErrSlotUnavailable)
		}

		booking := &model.Booking{
			Reference: uuid.New(),
			SlotID:    slot.ID,
			Kind:      req.Kind,
			Requester: req.Requester,
			Status:    model.BookingStatusPending,
			ServiceID: req.ServiceID,
			Notes:     req.Notes,
			Slot:      slot,
		}

		return booking, model.NewNotification(model.NotificationBookingCreated, booking, s.template.Location), nil
	})
	if err != nil {
		return nil, fmt.Errorf("reserve slot %d: %w", slotID, err)
	}

	s.logger.Info("Slot booked",
		zap.Int64("booking_id", booking.ID),
		zap.String("reference", booking.Reference.String()),
		zap.Int64("slot_id", slotID),
		zap.String("kind", string(booking.Kind)),
		zap.Int("current_bookings", booking.Slot.CurrentBookings),
	)

	return booking, nil
}

// Cancel отменяет бронирование и возвращает место в слот. Повторная отмена
// не ошибка и не уменьшает счётчик второй раз.
func (s *BookingService) Cancel(ctx context.Context, bookingID int64) (CancelResult, error) {
	var already bool
	now := s.clock.Now()

	booking, err := s.bookingRepo.Update(ctx, bookingID, func(b *model.Booking) (*model.Notification, error) {
		switch b.Status {
		case model.BookingStatusCancelled:
			already = true
			return nil, nil
		case model.BookingStatusCompleted:
			return nil, fmt.Errorf("%w: booking is completed", model.ErrInvalidTransition)
		}

		b.Status = model.BookingStatusCancelled
		b.CancelledAt = &now
		return model.NewNotification(model.NotificationBookingCancelled, b, s.template.Location), nil
	})
	if err != nil {
		return CancelResult{}, fmt.Errorf("cancel booking %d: %w", bookingID, err)
	}

	if already {
		s.logger.Info("Booking already cancelled", zap.Int64("booking_id", bookingID))
	} else {
		s.logger.Info("Booking cancelled",
			zap.Int64("booking_id", bookingID),
			zap.Int64("slot_id", booking.SlotID),
		)
	}

	return CancelResult{Booking: booking, AlreadyCancelled: already}, nil
}

// Confirm подтверждает pending-бронирование. Повторное подтверждение ничего не меняет.
func (s *BookingService) Confirm(ctx context.Context, bookingID int64) (*model.Booking, error) {
	booking, err := s.bookingRepo.Update(ctx, bookingID, func(b *model.Booking) (*model.Notification, error) {
		switch b.Status {
		case model.BookingStatusConfirmed:
			return nil, nil
		case model.BookingStatusCancelled:
			return nil, model.ErrBookingCancelled
		case model.BookingStatusPending:
			b.Status = model.BookingStatusConfirmed
			return model.NewNotification(model.NotificationBookingConfirmed, b, s.template.Location), nil
		default:
			return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, b.Status, model.BookingStatusConfirmed)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("confirm booking %d: %w", bookingID, err)
	}

	s.logger.Info("Booking confirmed", zap.Int64("booking_id", bookingID))
	return booking, nil
}

// Complete отмечает подтверждённое бронирование завершённым
func (s *BookingService) Complete(ctx context.Context, bookingID int64) (*model.Booking, error) {
	booking, err := s.bookingRepo.Update(ctx, bookingID, func(b *model.Booking) (*model.Notification, error) {
		switch b.Status {
		case model.BookingStatusCompleted:
			return nil, nil
		case model.BookingStatusConfirmed:
			b.Status = model.BookingStatusCompleted
			return nil, nil
		default:
			return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, b.Status, model.BookingStatusCompleted)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("complete booking %d: %w", bookingID, err)
	}

	s.logger.Info("Booking completed", zap.Int64("booking_id", bookingID))
	return booking, nil
}

// GetByID получает бронирование вместе со слотом
func (s *BookingService) GetByID(ctx context.Context, bookingID int64) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", bookingID, err)
	}
	return booking, nil
}

// ListByChat бронирования, сделанные из чата Telegram
func (s *BookingService) ListByChat(ctx context.Context, chatID int64) ([]*model.Booking, error) {
	bookings, err := s.bookingRepo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for chat %d: %w", chatID, err)
	}
	return bookings, nil
}

func (s *BookingService) validateRequest(req *ReserveRequest) error {
	req.Requester.Name = strings.TrimSpace(req.Requester.Name)
	req.Requester.Email = strings.TrimSpace(req.Requester.Email)
	req.Requester.Phone = strings.TrimSpace(req.Requester.Phone)

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: invalid fields %s", model.ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}

	if !req.Requester.HasContact() {
		return fmt.Errorf("%w: requester needs an email, phone or telegram chat", model.ErrValidation)
	}

	return nil
}
