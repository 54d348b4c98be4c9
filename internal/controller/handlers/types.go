package handlers

import (
	"github.com/Freeeeeet/tutor_reservations/internal/controller/state"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	engine       *service.ReservationService
	profiles     *service.ProfileService
	reviews      *service.ReviewService
	stateManager *state.Manager
	quickLimit   int
	logger       *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	engine *service.ReservationService,
	profiles *service.ProfileService,
	reviews *service.ReviewService,
	stateManager *state.Manager,
	quickLimit int,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		engine:       engine,
		profiles:     profiles,
		reviews:      reviews,
		stateManager: stateManager,
		quickLimit:   quickLimit,
		logger:       logger,
	}
}
