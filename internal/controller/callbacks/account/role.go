package account

import (
	"context"
	"errors"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleSetRole назначает роль один раз
func HandleSetRole(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	value, err := common.ParseValueFromCallback(callback.Data)
	role := model.Role(value)
	if err != nil || !role.Valid() {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		user, err := h.Profiles.AssignRole(hc.Ctx, hc.User.ID, role)
		if errors.Is(err, service.ErrConflict) {
			hc.AnswerAlert("❌ Роль уже выбрана и не может быть изменена")
			return
		}
		if err != nil {
			common.HandleError(hc, err, "assign role")
			return
		}
		hc.User = user

		if err := hc.EditMessage(RoleGreeting(role), nil); err != nil {
			common.HandleError(hc, err, "edit role greeting")
			return
		}
		common.LogAndAnswer(hc, "Role assigned from bot", "✅ Готово")
	})
}

// RoleGreeting возвращает подсказку по командам для роли
func RoleGreeting(role model.Role) string {
	if role == model.RoleTutor {
		return "🎓 Вы репетитор.\n\n" +
			"/requests - Записи студентов\n" +
			"/available - Приём новых записей\n" +
			"/help - Справка"
	}
	return "🎒 Вы студент.\n\n" +
		"/dashboard - Мои записи и быстрый выбор\n" +
		"/quick - Рекомендованные репетиторы\n" +
		"/subjects - Список предметов\n" +
		"/help - Справка"
}
