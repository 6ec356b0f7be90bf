package handlers

import (
	"github.com/BadSnail11/Bookingbot/internal/config"
	"github.com/BadSnail11/Bookingbot/internal/controller/state"
	"github.com/BadSnail11/Bookingbot/internal/service"
	"github.com/BadSnail11/Bookingbot/internal/timetable"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	cfg            *config.Config
	timetable      *timetable.Timetable
	guestService   *service.GuestService
	bookingService *service.BookingService
	availability   *service.AvailabilityService
	stateManager   *state.Manager
	logger         *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	cfg *config.Config,
	tt *timetable.Timetable,
	guestService *service.GuestService,
	bookingService *service.BookingService,
	availability *service.AvailabilityService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		cfg:            cfg,
		timetable:      tt,
		guestService:   guestService,
		bookingService: bookingService,
		availability:   availability,
		stateManager:   stateManager,
		logger:         logger,
	}
}
