package callbacktypes

import (
	"github.com/Freeeeeet/tutor_reservations/internal/controller/state"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"go.uber.org/zap"
)

// StateManager интерфейс для управления состоянием пользователей
type StateManager interface {
	ClearState(telegramID int64)
	GetState(telegramID int64) state.UserState
	SetState(telegramID int64, st state.UserState)
	SetData(telegramID int64, key string, value interface{})
	GetData(telegramID int64, key string) (interface{}, bool)
}

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	Engine       *service.ReservationService
	Profiles     *service.ProfileService
	Reviews      *service.ReviewService
	StateManager StateManager
	Logger       *zap.Logger

	// Сколько репетиторов показывать в быстрых рекомендациях
	QuickLimit int
}
