package handlers

import (
	"context"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleDashboard обрабатывает команду /dashboard
func (h *Handlers) HandleDashboard(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireStudent(ctx, b, update)
	if !ok {
		return
	}

	dashboard, err := h.engine.Dashboard(ctx, user.ID, h.quickLimit)
	if err != nil {
		h.fail(ctx, b, update.Message.Chat.ID, err, "dashboard")
		return
	}

	text, kb := common.BuildDashboardScreen(dashboard)
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleQuick обрабатывает команду /quick
func (h *Handlers) HandleQuick(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireStudent(ctx, b, update)
	if !ok {
		return
	}

	picks, err := h.engine.Recommend(ctx, user.ID, h.quickLimit)
	if err != nil {
		h.fail(ctx, b, update.Message.Chat.ID, err, "recommend")
		return
	}

	text, kb := common.BuildQuickPicksScreen(picks)
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleSubjects обрабатывает команду /subjects
func (h *Handlers) HandleSubjects(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireUser(ctx, b, update); !ok {
		return
	}

	subjects, err := h.profiles.ListSubjects(ctx)
	if err != nil {
		h.fail(ctx, b, update.Message.Chat.ID, err, "list subjects")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, common.BuildSubjectsScreen(subjects), nil)
}
