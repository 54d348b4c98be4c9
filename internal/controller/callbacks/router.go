package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/account"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/student"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/tutor"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlerFunc - обработчик одного вида callback
type HandlerFunc func(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler)

// Lookup находит обработчик по callback data
func Lookup(data string) (HandlerFunc, bool) {
	switch {
	// ===== Navigation =====
	case data == common.BackToDashboard:
		return common.HandleBackToDashboard, true
	case data == common.ShowQuickPicks:
		return common.HandleShowQuickPicks, true
	case data == common.ShowRequests:
		return common.HandleShowRequests, true

	// ===== Account =====
	case strings.HasPrefix(data, common.SetRole):
		return account.HandleSetRole, true

	// ===== Student =====
	case strings.HasPrefix(data, common.Reserve):
		return student.HandleReserve, true
	case strings.HasPrefix(data, common.TutorCard):
		return student.HandleTutorCard, true
	case strings.HasPrefix(data, common.CancelReservation):
		return student.HandleCancelReservation, true
	case strings.HasPrefix(data, common.ConfirmCancel):
		return student.HandleConfirmCancel, true
	case strings.HasPrefix(data, common.ReviewRating):
		return student.HandleReviewRating, true
	case strings.HasPrefix(data, common.Review):
		return student.HandleReview, true
	case data == common.ReviewSkipComment:
		return student.HandleReviewSkipComment, true

	// ===== Tutor =====
	case strings.HasPrefix(data, common.ApproveReservation):
		return tutor.HandleApproveReservation, true
	case data == common.ToggleAvailability:
		return tutor.HandleToggleAvailability, true
	}

	return nil, false
}

// Route направляет callback в нужный обработчик
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	handle, ok := Lookup(callback.Data)
	if !ok {
		h.Logger.Warn("Unknown callback", zap.String("data", callback.Data))
		common.AnswerCallback(ctx, b, callback.ID, "❌ Неизвестная команда")
		return
	}
	handle(ctx, b, callback, h)
}
