package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/account"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/student"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/state"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	user, err := h.profiles.RegisterTelegramUser(ctx, from.ID, displayName(from))
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	if !user.HasRole() {
		text, kb := common.BuildRoleScreen(user.Name)
		h.sendMessage(ctx, b, update.Message.Chat.ID, text, kb)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, account.RoleGreeting(user.Role), nil)
}

// displayName - имя и фамилия из Telegram, иначе username
func displayName(from *models.User) string {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		return from.Username
	}
	return name
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"/start - Регистрация и выбор роли\n" +
		"/help - Показать эту справку\n" +
		"/cancel - Отменить текущий диалог\n\n" +
		"Для студентов:\n" +
		"/dashboard - Мои записи и быстрый выбор\n" +
		"/quick - Рекомендованные репетиторы\n" +
		"/subjects - Список предметов\n\n" +
		"Для репетиторов:\n" +
		"/requests - Записи студентов\n" +
		"/available - Приём новых записей"

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.", nil)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.", nil)
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Команды обрабатываются другими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	switch currentState {
	case state.StateNone:
		h.logger.Debug("No active state, ignoring message", zap.Int64("telegram_id", telegramID))
	case state.StateReviewComment:
		h.handleReviewComment(ctx, b, update)
	default:
		h.logger.Warn("Unknown state, resetting", zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}

func (h *Handlers) handleReviewComment(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	reservationID, rating, ok := student.PendingReview(h.stateManager, telegramID)
	if !ok {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, "❌ Диалог отзыва устарел, начните заново")
		return
	}

	user, ok := h.requireStudent(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	_, err := h.reviews.CreateReview(ctx, reservationID, user.ID, rating, update.Message.Text)
	if errors.Is(err, service.ErrInvalidInput) {
		// Оставляем диалог открытым, пользователь может сократить текст
		h.sendError(ctx, b, chatID, "❌ Комментарий слишком длинный. Попробуйте короче или /cancel")
		return
	}
	h.stateManager.ClearState(telegramID)
	if err != nil {
		h.fail(ctx, b, chatID, err, "create review")
		return
	}

	h.logger.Info("Review created from bot",
		zap.String("user_id", user.ID),
		zap.Int64("reservation_id", reservationID))
	h.sendMessage(ctx, b, chatID, "✅ Спасибо за отзыв!\n\n/dashboard - Мои записи", nil)
}
