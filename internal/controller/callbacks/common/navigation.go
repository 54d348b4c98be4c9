package common

import (
	"context"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ========================
// Common Navigation Handlers
// ========================

// HandleBackToDashboard перерисовывает дашборд студента в текущем сообщении
func HandleBackToDashboard(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	WithStudent(ctx, b, callback, h, func(hc *HandlerContext) {
		hc.ClearState()
		if err := ShowDashboard(hc); err != nil {
			HandleError(hc, err, "show dashboard")
			return
		}
		hc.Answer("")
	})
}

// HandleShowQuickPicks показывает рекомендации для студента
func HandleShowQuickPicks(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	WithStudent(ctx, b, callback, h, func(hc *HandlerContext) {
		picks, err := h.Engine.Recommend(hc.Ctx, hc.User.ID, h.QuickLimit)
		if err != nil {
			HandleError(hc, err, "recommend")
			return
		}

		text, kb := BuildQuickPicksScreen(picks)
		if err := hc.EditMessage(text, kb); err != nil {
			HandleError(hc, err, "edit quick picks")
			return
		}
		hc.Answer("")
	})
}

// HandleShowRequests перерисовывает список записей репетитора
func HandleShowRequests(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	WithTutor(ctx, b, callback, h, func(hc *HandlerContext) {
		if err := ShowRequestsScreen(hc); err != nil {
			HandleError(hc, err, "show requests")
			return
		}
		hc.Answer("")
	})
}

// ShowDashboard загружает свежий дашборд и заменяет им текущее сообщение
func ShowDashboard(hc *HandlerContext) error {
	dashboard, err := hc.Handler.Engine.Dashboard(hc.Ctx, hc.User.ID, hc.Handler.QuickLimit)
	if err != nil {
		return err
	}
	text, kb := BuildDashboardScreen(dashboard)
	return hc.EditMessage(text, kb)
}

// ShowRequestsScreen загружает записи репетитора и заменяет ими текущее сообщение
func ShowRequestsScreen(hc *HandlerContext) error {
	views, err := hc.Handler.Engine.ListReservationsForTutor(hc.Ctx, hc.User.ID)
	if err != nil {
		return err
	}
	text, kb := BuildTutorRequestsScreen(views)
	return hc.EditMessage(text, kb)
}
