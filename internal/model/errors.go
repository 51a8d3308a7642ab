package model

import "errors"

// Ошибки ядра бронирования. Хранилища и сервисы оборачивают их через %w,
// вызывающий код классифицирует через errors.Is или хелперы ниже.
var (
	// NotFound
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")

	// CapacityExceeded
	ErrSlotFull = errors.New("slot is fully booked")

	// InvalidState
	ErrSlotInPast        = errors.New("slot is in the past")
	ErrSlotUnavailable   = errors.New("slot is not available")
	ErrSlotHasBookings   = errors.New("slot has bookings")
	ErrSlotExists        = errors.New("slot already exists for this date and start time")
	ErrBookingCancelled  = errors.New("booking already cancelled")
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ValidationError
	ErrValidation = errors.New("validation failed")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrSlotNotFound) || errors.Is(err, ErrBookingNotFound)
}

func IsCapacityExceeded(err error) bool {
	return errors.Is(err, ErrSlotFull)
}

func IsInvalidState(err error) bool {
	return errors.Is(err, ErrSlotInPast) ||
		errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrSlotHasBookings) ||
		errors.Is(err, ErrSlotExists) ||
		errors.Is(err, ErrBookingCancelled) ||
		errors.Is(err, ErrInvalidTransition)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
