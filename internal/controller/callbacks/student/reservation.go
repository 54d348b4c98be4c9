package student

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ========================
// Student Reservation Handlers
// ========================

// HandleReserve записывает студента к репетитору и перерисовывает дашборд
func HandleReserve(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	tutorID, err := common.ParseValueFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithStudent(ctx, b, callback, h, func(hc *common.HandlerContext) {
		view, err := h.Engine.Reserve(hc.Ctx, hc.User.ID, tutorID)
		if err != nil {
			common.HandleError(hc, err, "reserve")
			return
		}

		if err := common.ShowDashboard(hc); err != nil {
			// Запись создана, поэтому сообщаем об успехе отдельным сообщением
			hc.SendMessage(fmt.Sprintf("✅ Вы записаны к %s (%s)",
				html.EscapeString(view.Tutor.Name),
				formatting.FormatPrice(view.Tutor.PricePerHour)), nil)
		}
		common.LogAndAnswer(hc, "Reservation created from bot", "✅ Запись создана, ждите подтверждения")
	})
}

// HandleCancelReservation спрашивает подтверждение отмены
func HandleCancelReservation(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	reservationID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithStudent(ctx, b, callback, h, func(hc *common.HandlerContext) {
		text, kb := common.BuildCancelConfirmScreen(reservationID)
		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "edit cancel confirm")
			return
		}
		hc.Answer("Подтверждение отмены")
	})
}

// HandleConfirmCancel отменяет запись и перерисовывает дашборд
func HandleConfirmCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	reservationID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithStudent(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := h.Engine.Cancel(hc.Ctx, reservationID, hc.User.ID); err != nil {
			common.HandleError(hc, err, "cancel reservation")
			return
		}

		if err := common.ShowDashboard(hc); err != nil {
			hc.SendMessage(fmt.Sprintf("✅ Запись #%d отменена.", reservationID), nil)
		}
		common.LogAndAnswer(hc, "Reservation cancelled from bot", "✅ Запись отменена")
	})
}
