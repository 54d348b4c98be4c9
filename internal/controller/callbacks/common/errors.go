package common

import (
	"errors"

	"github.com/Freeeeeet/tutor_reservations/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrRoleNotChosen = errors.New("role is not chosen")
	ErrNotAStudent   = errors.New("user is not a student")
	ErrNotATutor     = errors.New("user is not a tutor")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ Пользователь не найден. Используйте /start"
	case errors.Is(err, ErrRoleNotChosen):
		return "❌ Сначала выберите роль: /start"
	case errors.Is(err, ErrNotAStudent):
		return "❌ Эта функция доступна только студентам"
	case errors.Is(err, ErrNotATutor):
		return "❌ Эта функция доступна только репетиторам"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	case errors.Is(err, service.ErrNotFound):
		return "❌ Не найдено. Возможно, запись уже отменена"
	case errors.Is(err, service.ErrForbidden):
		return "❌ У вас нет прав на это действие"
	case errors.Is(err, service.ErrAlreadyApproved):
		return "ℹ️ Запись уже подтверждена"
	case errors.Is(err, service.ErrConflict):
		return "❌ Это уже сделано раньше"
	case errors.Is(err, service.ErrInvalidState):
		return "❌ Репетитор сейчас не принимает записи"
	case errors.Is(err, service.ErrInvalidInput):
		return "❌ Некорректные данные"
	default:
		return "❌ Произошла ошибка. Попробуйте позже"
	}
}
