package handlers

import (
	"context"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleRequests обрабатывает команду /requests
func (h *Handlers) HandleRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	views, err := h.engine.ListReservationsForTutor(ctx, user.ID)
	if err != nil {
		h.fail(ctx, b, update.Message.Chat.ID, err, "list tutor reservations")
		return
	}

	text, kb := common.BuildTutorRequestsScreen(views)
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleAvailable обрабатывает команду /available
func (h *Handlers) HandleAvailable(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	profile, err := h.profiles.GetTutorProfile(ctx, user.ID)
	if err != nil {
		h.fail(ctx, b, update.Message.Chat.ID, err, "get tutor profile")
		return
	}

	text, kb := common.BuildAvailabilityScreen(profile.IsAvailable)
	h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
}
