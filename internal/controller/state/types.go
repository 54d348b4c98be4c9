package state

import "time"

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Ожидаем текст комментария к отзыву
	StateReviewComment UserState = "review_comment"
)

// Ключи временных данных диалога отзыва
const (
	KeyReservationID = "reservation_id"
	KeyRating        = "rating"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State     UserState
	Data      map[string]interface{} // Временные данные для текущего диалога
	UpdatedAt time.Time
}
