package handlers

import (
	"github.com/Freeeeeet/tour_booking/internal/controller/state"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	availabilityService *service.AvailabilityService
	bookingService      *service.BookingService
	stateManager        *state.Manager
	logger              *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	availabilityService *service.AvailabilityService,
	bookingService *service.BookingService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		availabilityService: availabilityService,
		bookingService:      bookingService,
		stateManager:        stateManager,
		logger:              logger,
	}
}
