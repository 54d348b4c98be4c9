package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDFromCallback(t *testing.T) {
	tests := []struct {
		data    string
		want    int64
		wantErr bool
	}{
		{data: "approve_reservation:123", want: 123},
		{data: "confirm_cancel:1", want: 1},
		{data: "approve_reservation:", wantErr: true},
		{data: "approve_reservation:abc", wantErr: true},
		{data: "approve_reservation:0", wantErr: true},
		{data: "approve_reservation:-4", wantErr: true},
		{data: "review_rating:1:5", wantErr: true},
		{data: "show_quick", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseIDFromCallback(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValueFromCallback(t *testing.T) {
	got, err := ParseValueFromCallback("reserve:0b5f7c1e-4f0a-4d39-9d0e-7a3c1b2f9e11")
	require.NoError(t, err)
	assert.Equal(t, "0b5f7c1e-4f0a-4d39-9d0e-7a3c1b2f9e11", got)

	_, err = ParseValueFromCallback("reserve:")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseIDAndValue(t *testing.T) {
	id, value, err := ParseIDAndValue("review_rating:12:5")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, 5, value)

	for _, data := range []string{"review_rating:12", "review_rating:x:5", "review_rating:12:x", "review_rating:0:5"} {
		_, _, err := ParseIDAndValue(data)
		assert.ErrorIs(t, err, ErrInvalidFormat, data)
	}
}

func TestCallbackData(t *testing.T) {
	assert.Equal(t, "review_rating:12:5", CallbackData(ReviewRating, int64(12), 5))
	assert.Equal(t, "reserve:t1", CallbackData(Reserve, "t1"))
	assert.Equal(t, "show_quick", CallbackData(ShowQuickPicks))

	id, value, err := ParseIDAndValue(CallbackData(ReviewRating, int64(3), 4))
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, 4, value)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: ErrUserNotFound, want: "❌ Пользователь не найден. Используйте /start"},
		{err: fmt.Errorf("reservation 3: %w", service.ErrNotFound), want: "❌ Не найдено. Возможно, запись уже отменена"},
		{err: fmt.Errorf("x: %w", service.ErrForbidden), want: "❌ У вас нет прав на это действие"},
		{err: service.ErrAlreadyApproved, want: "ℹ️ Запись уже подтверждена"},
		{err: service.ErrConflict, want: "❌ Это уже сделано раньше"},
		{err: service.ErrInvalidState, want: "❌ Репетитор сейчас не принимает записи"},
		{err: errors.New("connection refused"), want: "❌ Произошла ошибка. Попробуйте позже"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorMessage(tt.err), tt.err.Error())
	}
}

func TestIsMessageNotModifiedError(t *testing.T) {
	assert.False(t, IsMessageNotModifiedError(nil))
	assert.True(t, IsMessageNotModifiedError(errors.New("bad request, Bad Request: message is not modified: specified new message content")))
	assert.False(t, IsMessageNotModifiedError(errors.New("chat not found")))
}

func TestCallbackDataPatternsAreDistinct(t *testing.T) {
	patterns := []string{
		BackToDashboard, ShowQuickPicks, ShowRequests,
		SetRole,
		Reserve, TutorCard, CancelReservation, ConfirmCancel, Review, ReviewRating, ReviewSkipComment,
		ApproveReservation, ToggleAvailability,
	}

	seen := map[string]bool{}
	for _, p := range patterns {
		assert.False(t, seen[p], "duplicate callback pattern %q", p)
		seen[p] = true
	}

	// Telegram ограничивает callback data 64 байтами, uuid репетитора - 36
	longest := CallbackData(TutorCard, "00000000-0000-0000-0000-000000000000")
	assert.LessOrEqual(t, len(longest), 64)
	assert.LessOrEqual(t, len(CallbackData(ReviewRating, int64(1<<62), 5)), 64)
}
