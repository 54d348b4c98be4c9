package callbacks

import (
	"context"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler обертка для callbacktypes.Handler с методами
type Handler struct {
	*callbacktypes.Handler
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	engine *service.ReservationService,
	profiles *service.ProfileService,
	reviews *service.ReviewService,
	stateManager callbacktypes.StateManager,
	quickLimit int,
	logger *zap.Logger,
) *Handler {
	inner := &callbacktypes.Handler{
		Engine:       engine,
		Profiles:     profiles,
		Reviews:      reviews,
		StateManager: stateManager,
		Logger:       logger,
		QuickLimit:   quickLimit,
	}
	return &Handler{Handler: inner}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.Logger.Info("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h.Handler)
}
