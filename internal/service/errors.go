package service

import (
	"errors"
	"fmt"
)

// Доменные ошибки сервисов. Сравниваются через errors.Is
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidState    = errors.New("invalid state")
	ErrAlreadyApproved = errors.New("reservation already approved")
	ErrInvalidInput    = errors.New("invalid input")
)

// ErrStorage - инфраструктурная ошибка хранилища, не относится к доменным
var ErrStorage = errors.New("storage failure")

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// IsDomainError проверяет что ошибку можно показать пользователю как есть
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrAlreadyApproved) ||
		errors.Is(err, ErrInvalidInput)
}
