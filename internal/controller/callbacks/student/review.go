package student

import (
	"context"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/state"
	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Student Review Handlers
// ========================

// HandleReview показывает выбор оценки
func HandleReview(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	reservationID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithStudent(ctx, b, callback, h, func(hc *common.HandlerContext) {
		text, kb := common.BuildRatingScreen(reservationID)
		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "edit rating screen")
			return
		}
		hc.Answer("")
	})
}

// HandleReviewRating запоминает оценку и ждёт комментарий
func HandleReviewRating(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	reservationID, rating, err := ParseRatingCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithStudent(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.SetState(state.StateReviewComment)
		hc.SetData(state.KeyReservationID, reservationID)
		hc.SetData(state.KeyRating, rating)

		kb := keyboard.NewBuilder().
			Row(keyboard.Button("➡️ Без комментария", common.ReviewSkipComment)).
			AddBackButton(common.BackToDashboard).
			Build()

		if err := hc.EditMessage("✍️ Напишите комментарий к отзыву или отправьте /cancel", kb); err != nil {
			common.HandleError(hc, err, "edit review comment prompt")
			return
		}
		hc.Answer("")
	})
}

// HandleReviewSkipComment сохраняет отзыв без комментария
func HandleReviewSkipComment(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithStudent(ctx, b, callback, h, func(hc *common.HandlerContext) {
		reservationID, rating, ok := PendingReview(h.StateManager, hc.TelegramID)
		if !ok {
			hc.AnswerAlert("❌ Диалог отзыва устарел, начните заново")
			return
		}
		hc.ClearState()

		if _, err := h.Reviews.CreateReview(hc.Ctx, reservationID, hc.User.ID, rating, ""); err != nil {
			common.HandleError(hc, err, "create review")
			return
		}

		h.Logger.Info("Review created from bot",
			zap.String("user_id", hc.User.ID),
			zap.Int64("reservation_id", reservationID))

		if err := common.ShowDashboard(hc); err != nil {
			hc.SendMessage("✅ Спасибо за отзыв!", nil)
		}
		hc.Answer("✅ Спасибо за отзыв!")
	})
}

// ParseRatingCallback разбирает review_rating:<id>:<оценка> и проверяет диапазон оценки
func ParseRatingCallback(data string) (int64, int, error) {
	reservationID, rating, err := common.ParseIDAndValue(data)
	if err != nil {
		return 0, 0, err
	}
	if rating < model.RatingMin || rating > model.RatingMax {
		return 0, 0, common.ErrInvalidFormat
	}
	return reservationID, rating, nil
}

// PendingReview достаёт из состояния незавершённый отзыв
func PendingReview(sm callbacktypes.StateManager, telegramID int64) (int64, int, bool) {
	if sm.GetState(telegramID) != state.StateReviewComment {
		return 0, 0, false
	}
	rawID, ok := sm.GetData(telegramID, state.KeyReservationID)
	if !ok {
		return 0, 0, false
	}
	rawRating, ok := sm.GetData(telegramID, state.KeyRating)
	if !ok {
		return 0, 0, false
	}
	reservationID, ok := rawID.(int64)
	if !ok {
		return 0, 0, false
	}
	rating, ok := rawRating.(int)
	if !ok {
		return 0, 0, false
	}
	return reservationID, rating, true
}
