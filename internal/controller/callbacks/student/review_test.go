package student

import (
	"testing"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRatingCallback(t *testing.T) {
	tests := []struct {
		data       string
		wantID     int64
		wantRating int
		wantErr    bool
	}{
		{data: "review_rating:12:5", wantID: 12, wantRating: 5},
		{data: "review_rating:3:1", wantID: 3, wantRating: 1},
		{data: "review_rating:3:0", wantErr: true},
		{data: "review_rating:3:6", wantErr: true},
		{data: "review_rating:3:-2", wantErr: true},
		{data: "review_rating:0:4", wantErr: true},
		{data: "review_rating:3", wantErr: true},
		{data: "review_rating:x:4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			id, rating, err := ParseRatingCallback(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantRating, rating)
		})
	}
}

func TestPendingReview(t *testing.T) {
	const telegramID = int64(42)

	tests := []struct {
		name    string
		prepare func(sm *state.Manager)
		wantOK  bool
	}{
		{
			name: "complete dialog",
			prepare: func(sm *state.Manager) {
				sm.SetState(telegramID, state.StateReviewComment)
				sm.SetData(telegramID, state.KeyReservationID, int64(7))
				sm.SetData(telegramID, state.KeyRating, 4)
			},
			wantOK: true,
		},
		{
			name:    "no dialog",
			prepare: func(*state.Manager) {},
		},
		{
			name: "rating missing",
			prepare: func(sm *state.Manager) {
				sm.SetState(telegramID, state.StateReviewComment)
				sm.SetData(telegramID, state.KeyReservationID, int64(7))
			},
		},
		{
			name: "wrong id type",
			prepare: func(sm *state.Manager) {
				sm.SetState(telegramID, state.StateReviewComment)
				sm.SetData(telegramID, state.KeyReservationID, "7")
				sm.SetData(telegramID, state.KeyRating, 4)
			},
		},
		{
			name: "data without state",
			prepare: func(sm *state.Manager) {
				sm.SetData(telegramID, state.KeyReservationID, int64(7))
				sm.SetData(telegramID, state.KeyRating, 4)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := state.NewManager()
			tt.prepare(sm)

			id, rating, ok := PendingReview(sm, telegramID)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, int64(7), id)
				assert.Equal(t, 4, rating)
			}
		})
	}
}
