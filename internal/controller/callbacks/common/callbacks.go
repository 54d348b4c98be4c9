package common

// ========================
// Callback Data Patterns
// ========================

// Навигация
const (
	BackToDashboard = "back_to_dashboard"
	ShowQuickPicks  = "show_quick"
	ShowRequests    = "show_requests"
)

// Выбор роли
const (
	SetRole = "set_role:" // set_role:student
)

// Студент
const (
	Reserve           = "reserve:"            // reserve:<tutor id>
	TutorCard         = "tutor_card:"         // tutor_card:<tutor id>
	CancelReservation = "cancel_reservation:" // cancel_reservation:123
	ConfirmCancel     = "confirm_cancel:"     // confirm_cancel:123
	Review            = "review:"             // review:123
	ReviewRating      = "review_rating:"      // review_rating:123:5
	ReviewSkipComment = "review_skip"
)

// Репетитор
const (
	ApproveReservation = "approve_reservation:" // approve_reservation:123
	ToggleAvailability = "toggle_availability"
)
