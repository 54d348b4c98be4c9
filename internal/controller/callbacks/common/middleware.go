package common

import (
	"context"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// WithUser создаёт HandlerContext и загружает пользователя
// При ошибке автоматически отвечает пользователю
func WithUser(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	with(ctx, b, callback, h, (*HandlerContext).RequireUser, handler)
}

// WithStudent создаёт HandlerContext и проверяет что пользователь - студент
func WithStudent(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	with(ctx, b, callback, h, (*HandlerContext).RequireStudent, handler)
}

// WithTutor создаёт HandlerContext и проверяет что пользователь - репетитор
func WithTutor(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	with(ctx, b, callback, h, (*HandlerContext).RequireTutor, handler)
}

func with(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	check func(*HandlerContext) error,
	handler func(*HandlerContext),
) {
	hc := NewHandlerContext(ctx, b, callback, h)

	if err := check(hc); err != nil {
		h.Logger.Warn("Callback access check failed",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.String("data", callback.Data),
			zap.Error(err))
		hc.AnswerAlert(ErrorMessage(err))
		return
	}

	handler(hc)
}

// HandleError обрабатывает ошибку и отправляет ответ пользователю
// Доменные ошибки логируются как info, остальные как error
func HandleError(hc *HandlerContext, err error, operation string) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Int64("telegram_id", hc.TelegramID),
		zap.Error(err),
	}
	if service.IsDomainError(err) {
		hc.Handler.Logger.Info("Operation rejected", fields...)
	} else {
		hc.Handler.Logger.Error("Operation failed", fields...)
	}
	hc.AnswerAlert(ErrorMessage(err))
}

// LogAndAnswer логирует действие и отвечает на callback
func LogAndAnswer(hc *HandlerContext, message string, answer string) {
	hc.Handler.Logger.Info(message,
		zap.Int64("telegram_id", hc.TelegramID),
		zap.String("user_id", hc.User.ID))
	hc.Answer(answer)
}
