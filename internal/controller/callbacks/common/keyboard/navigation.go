package keyboard

import "github.com/go-telegram/bot/models"

// BackButton создаёт кнопку "Назад"
func BackButton(callbackData string) models.InlineKeyboardButton {
	return Button("⬅️ Назад", callbackData)
}

// ConfirmCancelRow создаёт ряд с кнопками Да/Нет
func ConfirmCancelRow(confirmCallback, cancelCallback string) []models.InlineKeyboardButton {
	return []models.InlineKeyboardButton{
		Button("✅ Да", confirmCallback),
		Button("❌ Нет", cancelCallback),
	}
}

// AddBackButton добавляет кнопку "Назад" к builder
func (b *Builder) AddBackButton(callbackData string) *Builder {
	return b.Row(BackButton(callbackData))
}
