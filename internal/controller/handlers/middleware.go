package handlers

import (
	"context"
	"errors"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireUser проверяет что пользователь существует
// Возвращает user и true если OK, nil и false если нет
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	user, err := h.profiles.GetUserByTelegramID(ctx, telegramID)

	if errors.Is(err, service.ErrNotFound) {
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(common.ErrUserNotFound))
		return nil, false
	}

	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return nil, false
	}

	return user, true
}

// requireStudent проверяет что пользователь является студентом
func (h *Handlers) requireStudent(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	return h.requireRole(ctx, b, update, model.RoleStudent, common.ErrNotAStudent)
}

// requireTutor проверяет что пользователь является репетитором
func (h *Handlers) requireTutor(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	return h.requireRole(ctx, b, update, model.RoleTutor, common.ErrNotATutor)
}

func (h *Handlers) requireRole(ctx context.Context, b *bot.Bot, update *models.Update, role model.Role, mismatch error) (*model.User, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}

	switch {
	case !user.HasRole():
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(common.ErrRoleNotChosen))
		return nil, false
	case user.Role != role:
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(mismatch))
		return nil, false
	}

	return user, true
}

// fail отправляет сообщение по ошибке сервиса и логирует инфраструктурные ошибки
func (h *Handlers) fail(ctx context.Context, b *bot.Bot, chatID int64, err error, operation string) {
	if !service.IsDomainError(err) {
		h.logger.Error("Operation failed",
			zap.String("operation", operation),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	h.sendError(ctx, b, chatID, common.ErrorMessage(err))
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет HTML сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil && len(kb.InlineKeyboard) > 0 {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
