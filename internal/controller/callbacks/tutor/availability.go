package tutor

import (
	"context"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleToggleAvailability переключает приём новых записей
func HandleToggleAvailability(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTutor(ctx, b, callback, h, func(hc *common.HandlerContext) {
		profile, err := h.Profiles.GetTutorProfile(hc.Ctx, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "get tutor profile")
			return
		}

		available := !profile.IsAvailable
		if err := h.Profiles.SetAvailability(hc.Ctx, hc.User.ID, available); err != nil {
			common.HandleError(hc, err, "set availability")
			return
		}

		text, kb := common.BuildAvailabilityScreen(available)
		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "edit availability")
			return
		}
		common.LogAndAnswer(hc, "Tutor availability toggled", "✅ Статус обновлён")
	})
}
