package common

import (
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_reservations/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/go-telegram/bot/models"
)

// BuildRoleScreen формирует экран выбора роли после регистрации
func BuildRoleScreen(name string) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот для записи к репетиторам.\n"+
			"Выберите, кем вы будете. Роль выбирается один раз.",
		html.EscapeString(name),
	)

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("🎒 Я студент", SetRole+string(model.RoleStudent)),
			keyboard.Button("🎓 Я репетитор", SetRole+string(model.RoleTutor)),
		).
		Build()

	return text, kb
}

// BuildDashboardScreen формирует дашборд студента: записи и быстрый выбор
func BuildDashboardScreen(d *service.StudentDashboard) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	kb := keyboard.NewBuilder()

	count := len(d.Reservations)
	fmt.Fprintf(&sb, "📋 <b>Мои записи</b>: %d %s\n\n", count, formatting.PluralizeReservations(count))

	if count == 0 {
		sb.WriteString("Пока нет ни одной записи.\n")
	}
	for i, r := range d.Reservations {
		fmt.Fprintf(&sb, "%d. <b>%s</b> · %s\n   %s\n",
			i+1,
			html.EscapeString(r.Tutor.Name),
			formatting.FormatPrice(r.Tutor.PricePerHour),
			formatting.ReservationStatus(r.Reservation),
		)
		if contacts := tutorContacts(r.Tutor); contacts != "" {
			fmt.Fprintf(&sb, "   %s\n", contacts)
		}

		kb.Row(
			keyboard.Button(fmt.Sprintf("❌ Отменить #%d", r.ID), CallbackData(CancelReservation, r.ID)),
			keyboard.Button("⭐ Отзыв", CallbackData(Review, r.ID)),
		)
	}

	sb.WriteString("\n✨ <b>Быстрый выбор</b>\n")
	if len(d.QuickPicks) == 0 {
		sb.WriteString("Сейчас нет свободных репетиторов.")
	}
	for _, t := range d.QuickPicks {
		fmt.Fprintf(&sb, "• %s · %s%s\n",
			html.EscapeString(t.Name),
			formatting.FormatPrice(t.PricePerHour),
			subjectSuffix(t.Subjects),
		)
		kb.Row(
			keyboard.Button("➕ "+t.Name, CallbackData(Reserve, t.ID)),
			keyboard.Button("ℹ️", CallbackData(TutorCard, t.ID)),
		)
	}

	return sb.String(), kb.Build()
}

// BuildQuickPicksScreen формирует список рекомендованных репетиторов
func BuildQuickPicksScreen(tutors []*model.TutorProfile) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	if len(tutors) == 0 {
		kb.AddBackButton(BackToDashboard)
		return "✨ Все доступные репетиторы уже в ваших записях.", kb.Build()
	}

	var sb strings.Builder
	sb.WriteString("✨ <b>Рекомендуем</b>\n\n")
	for _, t := range tutors {
		fmt.Fprintf(&sb, "• <b>%s</b> · %s%s\n",
			html.EscapeString(t.Name),
			formatting.FormatPrice(t.PricePerHour),
			subjectSuffix(t.Subjects),
		)
		kb.Row(
			keyboard.Button("➕ Записаться: "+t.Name, CallbackData(Reserve, t.ID)),
			keyboard.Button("ℹ️", CallbackData(TutorCard, t.ID)),
		)
	}
	kb.AddBackButton(BackToDashboard)

	return sb.String(), kb.Build()
}

// BuildTutorCardScreen формирует карточку репетитора с рейтингом
func BuildTutorCardScreen(t *model.TutorProfile, reviews []*model.Review) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🎓 <b>%s</b>\n\n", html.EscapeString(t.Name))
	fmt.Fprintf(&sb, "💰 %s\n", formatting.FormatPrice(t.PricePerHour))
	fmt.Fprintf(&sb, "📊 %s\n", formatting.AvailabilityStatus(t.IsAvailable))
	if names := subjectNames(t.Subjects); names != "" {
		fmt.Fprintf(&sb, "📚 %s\n", html.EscapeString(names))
	}
	if len(t.Languages) > 0 {
		fmt.Fprintf(&sb, "🗣 %s\n", html.EscapeString(strings.Join(t.Languages, ", ")))
	}
	if len(t.StudyModes) > 0 {
		fmt.Fprintf(&sb, "📍 %s\n", strings.Join(formatting.StudyModes(t.StudyModes), ", "))
	}
	if t.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", html.EscapeString(t.Description))
	}

	if len(reviews) > 0 {
		fmt.Fprintf(&sb, "\n⭐ %.1f (%d %s)\n",
			service.AverageRating(reviews),
			len(reviews),
			formatting.PluralizeReviews(len(reviews)),
		)
	} else {
		sb.WriteString("\n⭐ Отзывов пока нет\n")
	}

	kb := keyboard.NewBuilder()
	if t.IsAvailable {
		kb.Row(keyboard.Button("➕ Записаться", CallbackData(Reserve, t.ID)))
	}
	kb.AddBackButton(BackToDashboard)

	return sb.String(), kb.Build()
}

// BuildCancelConfirmScreen формирует подтверждение отмены записи
func BuildCancelConfirmScreen(reservationID int64) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("❓ Вы уверены, что хотите отменить запись #%d?\n\nРепетитор получит уведомление.", reservationID)
	kb := keyboard.NewBuilder().
		Row(keyboard.ConfirmCancelRow(CallbackData(ConfirmCancel, reservationID), BackToDashboard)...).
		Build()
	return text, kb
}

// BuildRatingScreen формирует выбор оценки для отзыва
func BuildRatingScreen(reservationID int64) (string, *models.InlineKeyboardMarkup) {
	row := make([]models.InlineKeyboardButton, 0, model.RatingMax-model.RatingMin+1)
	for rating := model.RatingMin; rating <= model.RatingMax; rating++ {
		row = append(row, keyboard.Button(fmt.Sprintf("%d⭐", rating), CallbackData(ReviewRating, reservationID, rating)))
	}

	kb := keyboard.NewBuilder().
		Row(row...).
		AddBackButton(BackToDashboard).
		Build()

	return fmt.Sprintf("⭐ Оцените занятия по записи #%d:", reservationID), kb
}

// BuildTutorRequestsScreen формирует список записей репетитора
func BuildTutorRequestsScreen(views []*model.TutorReservationView) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	if len(views) == 0 {
		return "📭 У вас пока нет записей.", kb.Build()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 <b>Ваши студенты</b>: %d\n\n", len(views))

	pending := 0
	for i, v := range views {
		fmt.Fprintf(&sb, "%d. <b>%s</b> · #%d\n   %s\n",
			i+1,
			html.EscapeString(v.Student.Name),
			v.ID,
			formatting.ReservationStatus(v.Reservation),
		)
		if contacts := joinNonEmpty(v.Student.Email, v.Student.Phone); contacts != "" {
			fmt.Fprintf(&sb, "   %s\n", html.EscapeString(contacts))
		}

		if !v.Approved {
			pending++
			kb.Row(keyboard.Button(
				fmt.Sprintf("✅ Подтвердить #%d (%s)", v.ID, v.Student.Name),
				CallbackData(ApproveReservation, v.ID),
			))
		}
	}

	if pending > 0 {
		fmt.Fprintf(&sb, "\n⏳ Ожидают подтверждения: %d", pending)
	}

	return sb.String(), kb.Build()
}

// BuildAvailabilityScreen формирует экран переключения доступности
func BuildAvailabilityScreen(available bool) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("📊 Статус: %s", formatting.AvailabilityStatus(available))

	label := "⏸ Перестать принимать записи"
	if !available {
		label = "▶️ Начать принимать записи"
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.Button(label, ToggleAvailability)).
		Build()

	return text, kb
}

// BuildSubjectsScreen формирует список предметов каталога
func BuildSubjectsScreen(subjects []*model.Subject) string {
	if len(subjects) == 0 {
		return "📚 Каталог предметов пуст."
	}

	var sb strings.Builder
	sb.WriteString("📚 <b>Предметы</b>\n\n")
	for _, s := range subjects {
		fmt.Fprintf(&sb, "• %s\n", html.EscapeString(s.Name))
	}
	return sb.String()
}

func tutorContacts(t model.TutorSummary) string {
	return html.EscapeString(joinNonEmpty(t.Email, t.Phone))
}

func subjectSuffix(subjects []*model.Subject) string {
	names := subjectNames(subjects)
	if names == "" {
		return ""
	}
	return " · " + html.EscapeString(names)
}

func subjectNames(subjects []*model.Subject) string {
	names := make([]string, 0, len(subjects))
	for _, s := range subjects {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func joinNonEmpty(values ...string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, " · ")
}
