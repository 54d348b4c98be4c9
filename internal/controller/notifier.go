package controller

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_reservations/internal/events"
	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender - часть *bot.Bot, нужная для уведомлений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// UserDirectory ищет получателей уведомлений
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// Notifier отправляет участникам записи уведомления о событиях
type Notifier struct {
	sender MessageSender
	users  UserDirectory
	logger *zap.Logger
}

func NewNotifier(sender MessageSender, users UserDirectory, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, users: users, logger: logger}
}

// Handle реализует events.Handler
func (n *Notifier) Handle(ctx context.Context, ev events.ReservationEvent) error {
	var recipientID, actorID string
	switch ev.Type {
	case events.ReservationCreated, events.ReservationCancelled:
		recipientID, actorID = ev.TutorID, ev.StudentID
	case events.ReservationApproved:
		recipientID, actorID = ev.StudentID, ev.TutorID
	default:
		n.logger.Warn("Unknown event type, skipping", zap.String("type", string(ev.Type)))
		return nil
	}

	recipient, err := n.lookup(ctx, recipientID)
	if err != nil || recipient == nil {
		return err
	}
	if recipient.TelegramID == nil {
		n.logger.Debug("Recipient has no telegram account",
			zap.String("user_id", recipient.ID),
			zap.Int64("reservation_id", ev.ReservationID))
		return nil
	}

	actorName := "Пользователь"
	actor, err := n.lookup(ctx, actorID)
	if err != nil {
		return err
	}
	if actor != nil && actor.Name != "" {
		actorName = actor.Name
	}

	text, kb := notificationFor(ev, actorName)
	params := &bot.SendMessageParams{
		ChatID:    *recipient.TelegramID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := n.sender.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send %s notification: %w", ev.Type, err)
	}

	n.logger.Info("Notification sent",
		zap.String("type", string(ev.Type)),
		zap.Int64("reservation_id", ev.ReservationID),
		zap.String("recipient_id", recipient.ID))
	return nil
}

// lookup возвращает nil без ошибки если пользователь уже удалён
func (n *Notifier) lookup(ctx context.Context, id string) (*model.User, error) {
	user, err := n.users.GetUser(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		n.logger.Warn("Notification user not found", zap.String("user_id", id))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, nil
}

func notificationFor(ev events.ReservationEvent, actorName string) (string, *models.InlineKeyboardMarkup) {
	name := html.EscapeString(actorName)

	switch ev.Type {
	case events.ReservationCreated:
		kb := keyboard.NewBuilder().
			Row(keyboard.Button("✅ Подтвердить", common.CallbackData(common.ApproveReservation, ev.ReservationID))).
			Row(keyboard.Button("👥 Все записи", common.ShowRequests)).
			Build()
		return fmt.Sprintf("⏳ <b>Новая запись #%d</b>\n\n👤 Студент: %s\n\nТребуется ваше подтверждение.", ev.ReservationID, name), kb
	case events.ReservationApproved:
		kb := keyboard.NewBuilder().
			Row(keyboard.Button("📋 Мои записи", common.BackToDashboard)).
			Build()
		return fmt.Sprintf("✅ <b>Запись #%d подтверждена</b>\n\n🎓 Репетитор: %s", ev.ReservationID, name), kb
	default:
		return fmt.Sprintf("❌ <b>Запись #%d отменена</b>\n\n👤 Студент: %s", ev.ReservationID, name), nil
	}
}
