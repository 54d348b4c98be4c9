package tutor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// telegramAPI записывает ответы на callback, которые бот отправил в Bot API
type telegramAPI struct {
	mu      sync.Mutex
	answers []string
}

func (a *telegramAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/answerCallbackQuery") {
		a.mu.Lock()
		a.answers = append(a.answers, r.FormValue("callback_query_id")+"|"+r.FormValue("text"))
		a.mu.Unlock()
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
}

func TestApproveRejectsMalformedCallback(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing id", data: common.ApproveReservation},
		{name: "not a number", data: common.ApproveReservation + "abc"},
		{name: "zero id", data: common.ApproveReservation + "0"},
		{name: "extra part", data: common.ApproveReservation + "1:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &telegramAPI{}
			server := httptest.NewServer(api)
			defer server.Close()

			b, err := bot.New("123:test", bot.WithServerURL(server.URL), bot.WithSkipGetMe())
			require.NoError(t, err)

			callback := &models.CallbackQuery{ID: "cb-1", Data: tt.data, From: models.User{ID: 42}}
			// Движок не нужен: разбор данных падает раньше
			HandleApproveReservation(context.Background(), b, callback, &callbacktypes.Handler{})

			assert.Equal(t, []string{"cb-1|" + common.ErrorMessage(common.ErrInvalidFormat)}, api.answers)
		})
	}
}
