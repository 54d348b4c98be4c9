package student

import (
	"context"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleTutorCard показывает карточку репетитора с отзывами
func HandleTutorCard(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	tutorID, err := common.ParseValueFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithStudent(ctx, b, callback, h, func(hc *common.HandlerContext) {
		profile, err := h.Profiles.GetTutorProfile(hc.Ctx, tutorID)
		if err != nil {
			common.HandleError(hc, err, "get tutor profile")
			return
		}
		reviews, err := h.Reviews.ListTutorReviews(hc.Ctx, tutorID)
		if err != nil {
			common.HandleError(hc, err, "list tutor reviews")
			return
		}

		text, kb := common.BuildTutorCardScreen(profile, reviews)
		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "edit tutor card")
			return
		}
		hc.Answer("")
	})
}
