package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Helper functions для всех callback handlers

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// ParseIDFromCallback извлекает числовой ID из callback data
// Например: "approve_reservation:123" -> 123
func ParseIDFromCallback(data string) (int64, error) {
	value, err := ParseValueFromCallback(data)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidFormat
	}
	return id, nil
}

// ParseValueFromCallback извлекает строковое значение из callback data
// Например: "reserve:9b1d..." -> "9b1d..."
func ParseValueFromCallback(data string) (string, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 2 || parts[1] == "" {
		return "", ErrInvalidFormat
	}
	return parts[1], nil
}

// ParseIDAndValue разбирает callback вида "prefix:ID:value"
// Например: "review_rating:12:5" -> 12, 5
func ParseIDAndValue(data string) (int64, int, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return 0, 0, ErrInvalidFormat
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, ErrInvalidFormat
	}
	value, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, ErrInvalidFormat
	}
	return id, value, nil
}

// CallbackData собирает callback data из префикса и аргументов
func CallbackData(prefix string, args ...interface{}) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(fmt.Sprint(arg))
	}
	return sb.String()
}

// IsMessageNotModifiedError проверяет ответ Telegram при редактировании без изменений
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
