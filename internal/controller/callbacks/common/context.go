package common

import (
	"context"
	"errors"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/state"
	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandlerContext содержит общие данные для обработки callback
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *callbacktypes.Handler
	Message    *models.Message
	User       *model.User
	TelegramID int64
	ChatID     int64
}

// NewHandlerContext создаёт новый контекст обработчика
func NewHandlerContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	msg := GetMessageFromCallback(callback)
	var chatID int64
	if msg != nil {
		chatID = msg.Chat.ID
	}

	return &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		Message:    msg,
		TelegramID: callback.From.ID,
		ChatID:     chatID,
	}
}

// LoadUser загружает пользователя в контекст
func (hc *HandlerContext) LoadUser() error {
	user, err := hc.Handler.Profiles.GetUserByTelegramID(hc.Ctx, hc.TelegramID)
	if errors.Is(err, service.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	hc.User = user
	return nil
}

// RequireUser проверяет что пользователь загружен
func (hc *HandlerContext) RequireUser() error {
	if hc.User == nil {
		return hc.LoadUser()
	}
	return nil
}

// RequireStudent проверяет что пользователь является студентом
func (hc *HandlerContext) RequireStudent() error {
	return hc.requireRole(model.RoleStudent, ErrNotAStudent)
}

// RequireTutor проверяет что пользователь является репетитором
func (hc *HandlerContext) RequireTutor() error {
	return hc.requireRole(model.RoleTutor, ErrNotATutor)
}

func (hc *HandlerContext) requireRole(role model.Role, mismatch error) error {
	if err := hc.RequireUser(); err != nil {
		return err
	}
	if !hc.User.HasRole() {
		return ErrRoleNotChosen
	}
	if hc.User.Role != role {
		return mismatch
	}
	return nil
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// EditMessage редактирует сообщение
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	params := &bot.EditMessageTextParams{
		ChatID:    hc.ChatID,
		MessageID: hc.Message.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := hc.Bot.EditMessageText(hc.Ctx, params)

	// "message is not modified" - не настоящая ошибка
	if IsMessageNotModifiedError(err) {
		return nil
	}

	return err
}

// SendMessage отправляет новое сообщение
func (hc *HandlerContext) SendMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    hc.ChatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := hc.Bot.SendMessage(hc.Ctx, params)
	return err
}

// ClearState очищает состояние пользователя
func (hc *HandlerContext) ClearState() {
	hc.Handler.StateManager.ClearState(hc.TelegramID)
}

// SetState устанавливает состояние пользователя
func (hc *HandlerContext) SetState(st state.UserState) {
	hc.Handler.StateManager.SetState(hc.TelegramID, st)
}

// SetData устанавливает данные в state
func (hc *HandlerContext) SetData(key string, value interface{}) {
	hc.Handler.StateManager.SetData(hc.TelegramID, key, value)
}

// GetData получает данные из state
func (hc *HandlerContext) GetData(key string) (interface{}, bool) {
	return hc.Handler.StateManager.GetData(hc.TelegramID, key)
}
