package model

import "time"

type Role string

const (
	RoleUnset   Role = ""        // Роль ещё не выбрана
	RoleStudent Role = "student" // Студент
	RoleTutor   Role = "tutor"   // Репетитор
)

// Valid проверяет что роль одна из допустимых (без unset)
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTutor
}

type User struct {
	ID         string    `json:"id"`
	TelegramID *int64    `json:"telegram_id,omitempty"` // nil - пользователь пришёл не из Telegram
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsStudent проверяет что пользователь студент
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsTutor проверяет что пользователь репетитор
func (u *User) IsTutor() bool {
	return u.Role == RoleTutor
}

// HasRole проверяет что роль уже назначена
func (u *User) HasRole() bool {
	return u.Role != RoleUnset
}
