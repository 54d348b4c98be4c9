package tutor

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleApproveReservation подтверждает запись студента
func HandleApproveReservation(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	reservationID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithTutor(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if _, err := h.Engine.Approve(hc.Ctx, reservationID, hc.User.ID); err != nil {
			common.HandleError(hc, err, "approve reservation")
			return
		}

		// Кнопка может прийти из уведомления, поэтому перерисовываем его в список записей
		if err := common.ShowRequestsScreen(hc); err != nil {
			hc.SendMessage(fmt.Sprintf("✅ Запись #%d подтверждена.", reservationID), nil)
		}
		common.LogAndAnswer(hc, "Reservation approved from bot", "✅ Запись подтверждена")
	})
}
